package profile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/learnerhub/internal/application/service"
	objectiveUC "github.com/khoahotran/learnerhub/internal/application/usecase/objective"
	userUC "github.com/khoahotran/learnerhub/internal/application/usecase/user"
	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/internal/domain/user"
	"github.com/khoahotran/learnerhub/internal/testutil"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type CompletionSuite struct {
	suite.Suite
	ctx        context.Context
	stores     userUC.Stores
	interests  *testutil.TagRepo
	objectives *testutil.ObjectiveRepo
	publisher  *testutil.Publisher
	users      *userUC.UserUseCase
	uc         *CompletionUseCase
}

func (s *CompletionSuite) SetupTest() {
	s.ctx = context.Background()
	s.interests = testutil.NewTagRepo(tag.KindInterest)
	s.objectives = testutil.NewObjectiveRepo()
	s.publisher = &testutil.Publisher{}
	s.stores = userUC.Stores{
		Users:      testutil.NewUserRepo(),
		Skills:     testutil.NewTagRepo(tag.KindSkill),
		Interests:  s.interests,
		Objectives: s.objectives,
	}
	s.users = userUC.NewUserUseCase(s.stores, s.publisher, nil, logger.NewNop())
	s.uc = NewCompletionUseCase(s.stores, s.publisher, logger.NewNop())
}

func (s *CompletionSuite) register(username, email string) uuid.UUID {
	v, err := s.users.Register(s.ctx, userUC.ProfileInput{Username: username, Email: email})
	s.Require().NoError(err)
	s.Equal(user.StatusInitial, v.Profile.CompletionStatus)
	return v.Profile.ID
}

func (s *CompletionSuite) status(id uuid.UUID) user.CompletionStatus {
	st, err := s.uc.GetCompletionStatus(s.ctx, id)
	s.Require().NoError(err)
	return st
}

func strPtr(v string) *string { return &v }

func (s *CompletionSuite) TestFullOnboarding() {
	alice := s.register("alice", "a@x.com")
	bob := s.register("bob", "b@x.com")
	chess := []tag.Descriptor{{Name: "Chess", Category: "Hobby"}}

	_, err := s.uc.UpdatePersonalInfo(s.ctx, alice, PersonalInfoInput{Bio: strPtr("hi")})
	s.Require().NoError(err)
	s.Equal(user.StatusPersonalInfoCompleted, s.status(alice))

	v, err := s.uc.UpdateInterests(s.ctx, alice, chess)
	s.Require().NoError(err)
	s.Equal(user.StatusInterestsCompleted, s.status(alice))
	s.Require().Len(v.Interests, 1)
	chessID := v.Interests[0].ID

	v, err = s.uc.UpdateInterests(s.ctx, alice, chess)
	s.Require().NoError(err)
	s.Equal(chessID, v.Interests[0].ID)

	_, err = s.uc.UpdatePersonalInfo(s.ctx, bob, PersonalInfoInput{})
	s.Require().NoError(err)
	v, err = s.uc.UpdateInterests(s.ctx, bob, chess)
	s.Require().NoError(err)
	s.Equal(chessID, v.Interests[0].ID)
	s.Equal(1, s.interests.Creates)

	v, err = s.uc.UpdateLearningObjectives(s.ctx, alice, []objectiveUC.ObjectiveInput{{Title: "Learn Go", Description: "Backend", ProgressPercentage: 5}})
	s.Require().NoError(err)
	s.Equal(user.StatusCompleted, s.status(alice))
	s.Require().Len(v.Objectives, 1)
	s.Equal(alice, v.Objectives[0].UserID)

	s.Eventually(func() bool {
		advanced := 0
		for _, e := range s.publisher.Events() {
			if e.EventType == service.ProfileEventCompletionAdvanced && e.UserID == alice {
				advanced++
			}
		}
		return advanced == 3
	}, time.Second, 10*time.Millisecond)
}

func (s *CompletionSuite) TestStatusNeverRegresses() {
	id := s.register("carol", "c@x.com")
	_, err := s.uc.UpdatePersonalInfo(s.ctx, id, PersonalInfoInput{})
	s.Require().NoError(err)
	_, err = s.uc.UpdateInterests(s.ctx, id, nil)
	s.Require().NoError(err)
	_, err = s.uc.UpdateLearningObjectives(s.ctx, id, nil)
	s.Require().NoError(err)
	s.Equal(user.StatusCompleted, s.status(id))

	_, err = s.uc.UpdatePersonalInfo(s.ctx, id, PersonalInfoInput{Bio: strPtr("again")})
	s.Require().NoError(err)
	_, err = s.uc.UpdateInterests(s.ctx, id, []tag.Descriptor{{Name: "Go"}})
	s.Require().NoError(err)
	_, err = s.uc.UpdateLearningObjectives(s.ctx, id, []objectiveUC.ObjectiveInput{{Title: "X1"}})
	s.Require().NoError(err)
	s.Equal(user.StatusCompleted, s.status(id))
}

func (s *CompletionSuite) TestStepsOutOfOrderDoNotAdvance() {
	id := s.register("dave", "d@x.com")

	_, err := s.uc.UpdateInterests(s.ctx, id, []tag.Descriptor{{Name: "Chess"}})
	s.Require().NoError(err)
	s.Equal(user.StatusInitial, s.status(id))

	_, err = s.uc.UpdateLearningObjectives(s.ctx, id, []objectiveUC.ObjectiveInput{{Title: "Learn Go"}})
	s.Require().NoError(err)
	s.Equal(user.StatusInitial, s.status(id))
}

func (s *CompletionSuite) TestFourObjectivesRejectedWithoutChanges() {
	id := s.register("erin", "e@x.com")
	_, err := s.uc.UpdateLearningObjectives(s.ctx, id, []objectiveUC.ObjectiveInput{{Title: "Keep me"}})
	s.Require().NoError(err)

	_, err = s.uc.UpdateLearningObjectives(s.ctx, id, []objectiveUC.ObjectiveInput{
		{Title: "O1"}, {Title: "O2"}, {Title: "O3"}, {Title: "O4"},
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	v, err := s.users.GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(v.Objectives, 1)
	s.Equal("Keep me", v.Objectives[0].Title)
	s.Equal(1, s.objectives.Count())
	s.Equal(user.StatusInitial, v.Profile.CompletionStatus)
}

func (s *CompletionSuite) TestLongBioIsTruncated() {
	id := s.register("frank", "f@x.com")

	v, err := s.uc.UpdatePersonalInfo(s.ctx, id, PersonalInfoInput{Bio: strPtr(strings.Repeat("b", 200))})
	s.Require().NoError(err)
	s.Len(v.Profile.Bio, 150)
}

func (s *CompletionSuite) TestUsernameTaken() {
	s.register("grace", "g@x.com")
	id := s.register("heidi", "h@x.com")

	_, err := s.uc.UpdatePersonalInfo(s.ctx, id, PersonalInfoInput{Username: strPtr("grace")})
	s.True(apperror.IsConflict(err))
	s.Equal(user.StatusInitial, s.status(id))

	// same username as now is not a conflict
	v, err := s.uc.UpdatePersonalInfo(s.ctx, id, PersonalInfoInput{Username: strPtr("heidi"), ProfilePictureURL: strPtr("https://img/h.png")})
	s.Require().NoError(err)
	s.Equal("https://img/h.png", v.Profile.ProfilePictureURL)
}

func (s *CompletionSuite) TestUnknownUser() {
	missing := uuid.New()
	_, err := s.uc.UpdatePersonalInfo(s.ctx, missing, PersonalInfoInput{})
	s.True(apperror.IsNotFound(err))
	_, err = s.uc.UpdateInterests(s.ctx, missing, nil)
	s.True(apperror.IsNotFound(err))
	_, err = s.uc.UpdateLearningObjectives(s.ctx, missing, nil)
	s.True(apperror.IsNotFound(err))
	_, err = s.uc.GetCompletionStatus(s.ctx, missing)
	s.True(apperror.IsNotFound(err))
}

func TestCompletionSuite(t *testing.T) {
	suite.Run(t, new(CompletionSuite))
}

func (s *CompletionSuite) TestEmptyListsKeepExistingReferences() {
	id := s.register("dora", "d@x.com")
	_, err := s.uc.UpdatePersonalInfo(s.ctx, id, PersonalInfoInput{})
	s.Require().NoError(err)
	_, err = s.uc.UpdateInterests(s.ctx, id, []tag.Descriptor{{Name: "Chess", Category: "Hobby"}})
	s.Require().NoError(err)
	_, err = s.uc.UpdateLearningObjectives(s.ctx, id, []objectiveUC.ObjectiveInput{{Title: "Learn Go"}})
	s.Require().NoError(err)

	v, err := s.uc.UpdateInterests(s.ctx, id, nil)
	s.Require().NoError(err)
	s.Len(v.Interests, 1)

	v, err = s.uc.UpdateLearningObjectives(s.ctx, id, []objectiveUC.ObjectiveInput{})
	s.Require().NoError(err)
	s.Len(v.Objectives, 1)
	s.Len(v.Interests, 1)
	s.Equal(user.StatusCompleted, s.status(id))
}

func (s *CompletionSuite) TestEmptyListsStillAdvance() {
	id := s.register("erin", "e@x.com")
	_, err := s.uc.UpdatePersonalInfo(s.ctx, id, PersonalInfoInput{})
	s.Require().NoError(err)

	v, err := s.uc.UpdateInterests(s.ctx, id, []tag.Descriptor{})
	s.Require().NoError(err)
	s.Empty(v.Interests)
	s.Equal(user.StatusInterestsCompleted, s.status(id))

	v, err = s.uc.UpdateLearningObjectives(s.ctx, id, nil)
	s.Require().NoError(err)
	s.Empty(v.Objectives)
	s.Equal(user.StatusCompleted, s.status(id))
}

func (s *CompletionSuite) TestFullyDroppedListClearsInterests() {
	id := s.register("finn", "f@x.com")
	_, err := s.uc.UpdateInterests(s.ctx, id, []tag.Descriptor{{Name: "Chess", Category: "Hobby"}})
	s.Require().NoError(err)

	v, err := s.uc.UpdateInterests(s.ctx, id, []tag.Descriptor{{ID: uuid.New()}})
	s.Require().NoError(err)
	s.Empty(v.Interests)
}
