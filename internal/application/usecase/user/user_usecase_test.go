package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/learnerhub/internal/application/service"
	objectiveUC "github.com/khoahotran/learnerhub/internal/application/usecase/objective"
	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/internal/testutil"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type UserUseCaseSuite struct {
	suite.Suite
	ctx       context.Context
	skills    *testutil.TagRepo
	interests *testutil.TagRepo
	publisher *testutil.Publisher
	uploader  *testutil.Uploader
	uc        *UserUseCase
}

func (s *UserUseCaseSuite) SetupTest() {
	s.ctx = context.Background()
	s.skills = testutil.NewTagRepo(tag.KindSkill)
	s.interests = testutil.NewTagRepo(tag.KindInterest)
	s.publisher = &testutil.Publisher{}
	s.uploader = &testutil.Uploader{URL: "https://res.cloudinary.com/demo/avatar.png"}
	s.uc = NewUserUseCase(Stores{
		Users:      testutil.NewUserRepo(),
		Skills:     s.skills,
		Interests:  s.interests,
		Objectives: testutil.NewObjectiveRepo(),
	}, s.publisher, s.uploader, logger.NewNop())
}

func (s *UserUseCaseSuite) TestRegisterRejectsDuplicates() {
	_, err := s.uc.Register(s.ctx, ProfileInput{Username: "alice", Email: "a@x.com"})
	s.Require().NoError(err)

	_, err = s.uc.Register(s.ctx, ProfileInput{Username: "alice2", Email: "a@x.com"})
	s.True(apperror.IsConflict(err))
	s.Equal("User with email 'a@x.com' already exists", apperror.PublicMessage(err))

	_, err = s.uc.Register(s.ctx, ProfileInput{Username: "alice", Email: "other@x.com"})
	s.True(apperror.IsConflict(err))
}

func (s *UserUseCaseSuite) TestRegisterValidates() {
	_, err := s.uc.Register(s.ctx, ProfileInput{Username: "al", Email: "a@x.com"})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	_, err = s.uc.Register(s.ctx, ProfileInput{Username: "alice", Email: "nope"})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *UserUseCaseSuite) TestRegisterResolvesReferencesAndPublishes() {
	v, err := s.uc.Register(s.ctx, ProfileInput{
		Username:   "alice",
		Email:      "a@x.com",
		Bio:        strings.Repeat("x", 180),
		Skills:     []tag.Descriptor{{Name: "Go", Category: "Programming"}},
		Interests:  []tag.Descriptor{{Name: "Chess", Category: "Hobby"}, {ID: uuid.New()}},
		Objectives: []objectiveUC.ObjectiveInput{{Title: "Ship it"}},
	})
	s.Require().NoError(err)
	s.Len(v.Profile.Bio, 150)
	s.Len(v.Skills, 1)
	s.Len(v.Interests, 1)
	s.Require().Len(v.Objectives, 1)
	s.Equal(v.Profile.ID, v.Objectives[0].UserID)

	s.Eventually(func() bool {
		evts := s.publisher.Events()
		return len(evts) == 1 && evts[0].EventType == service.ProfileEventCreated
	}, time.Second, 10*time.Millisecond)
}

func (s *UserUseCaseSuite) TestPublishFailureDoesNotFailRequest() {
	s.publisher.Err = errors.New("kafka down")
	_, err := s.uc.Register(s.ctx, ProfileInput{Username: "alice", Email: "a@x.com"})
	s.NoError(err)
}

func (s *UserUseCaseSuite) TestUpdateUserKeepsKeycloakAndCreatedAt() {
	kc := "kc-123"
	created, err := s.uc.Register(s.ctx, ProfileInput{Username: "alice", Email: "a@x.com", KeycloakID: &kc})
	s.Require().NoError(err)
	_, err = s.uc.Register(s.ctx, ProfileInput{Username: "bobby", Email: "b@x.com"})
	s.Require().NoError(err)

	id := created.Profile.ID
	v, err := s.uc.UpdateUser(s.ctx, id, ProfileInput{
		Username: "alice_new",
		Email:    "a@x.com",
		Skills:   []tag.Descriptor{{Name: "Go"}, {Name: "Go"}},
	})
	s.Require().NoError(err)
	s.Equal("alice_new", v.Profile.Username)
	s.Require().NotNil(v.Profile.KeycloakID)
	s.Equal("kc-123", *v.Profile.KeycloakID)
	s.True(created.Profile.CreatedAt.Equal(v.Profile.CreatedAt))
	s.Len(v.Skills, 1)

	_, err = s.uc.UpdateUser(s.ctx, id, ProfileInput{Username: "bobby", Email: "a@x.com"})
	s.True(apperror.IsConflict(err))
	_, err = s.uc.UpdateUser(s.ctx, id, ProfileInput{Username: "alice_new", Email: "b@x.com"})
	s.True(apperror.IsConflict(err))

	_, err = s.uc.UpdateUser(s.ctx, uuid.New(), ProfileInput{Username: "ghost", Email: "g@x.com"})
	s.True(apperror.IsNotFound(err))
}

func (s *UserUseCaseSuite) TestLookupsAndFindByTag() {
	kc := "kc-1"
	v, err := s.uc.Register(s.ctx, ProfileInput{
		Username:   "alice",
		Email:      "a@x.com",
		KeycloakID: &kc,
		Skills:     []tag.Descriptor{{Name: "Go"}},
		Interests:  []tag.Descriptor{{Name: "Chess"}},
	})
	s.Require().NoError(err)
	id := v.Profile.ID

	got, err := s.uc.GetByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(id, got.Profile.ID)
	got, err = s.uc.GetByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(id, got.Profile.ID)
	got, err = s.uc.GetByKeycloakID(s.ctx, "kc-1")
	s.Require().NoError(err)
	s.Equal(id, got.Profile.ID)

	_, err = s.uc.GetByKeycloakID(s.ctx, "kc-unknown")
	s.True(apperror.IsNotFound(err))

	bySkill, err := s.uc.FindBySkillName(s.ctx, "Go")
	s.Require().NoError(err)
	s.Len(bySkill, 1)
	byInterest, err := s.uc.FindByInterestName(s.ctx, "Chess")
	s.Require().NoError(err)
	s.Len(byInterest, 1)
	none, err := s.uc.FindBySkillName(s.ctx, "Cobol")
	s.Require().NoError(err)
	s.Empty(none)

	all, err := s.uc.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *UserUseCaseSuite) TestDeletedTagIsSkippedOnLoad() {
	v, err := s.uc.Register(s.ctx, ProfileInput{Username: "alice", Email: "a@x.com", Skills: []tag.Descriptor{{Name: "Go"}, {Name: "SQL"}}})
	s.Require().NoError(err)
	s.Require().NoError(s.skills.Delete(s.ctx, v.Skills[0].ID))

	got, err := s.uc.GetByID(s.ctx, v.Profile.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Skills, 1)
	s.Equal("SQL", got.Skills[0].Name)
	s.Len(got.Profile.SkillIDs, 2)
}

func (s *UserUseCaseSuite) TestDeleteUser() {
	v, err := s.uc.Register(s.ctx, ProfileInput{Username: "alice", Email: "a@x.com"})
	s.Require().NoError(err)

	s.Require().NoError(s.uc.DeleteUser(s.ctx, v.Profile.ID))
	s.True(apperror.IsNotFound(s.uc.DeleteUser(s.ctx, v.Profile.ID)))

	s.Eventually(func() bool {
		for _, e := range s.publisher.Events() {
			if e.EventType == service.ProfileEventDeleted && e.UserID == v.Profile.ID {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func (s *UserUseCaseSuite) TestUploadProfilePicture() {
	v, err := s.uc.Register(s.ctx, ProfileInput{Username: "alice", Email: "a@x.com"})
	s.Require().NoError(err)

	got, err := s.uc.UploadProfilePicture(s.ctx, v.Profile.ID, strings.NewReader("png-bytes"))
	s.Require().NoError(err)
	s.Equal(s.uploader.URL, got.Profile.ProfilePictureURL)
	s.Equal("users/"+v.Profile.ID.String(), s.uploader.Folder)
	s.Equal("avatar", s.uploader.PublicID)
	s.Equal("png-bytes", string(s.uploader.Body))
}

func (s *UserUseCaseSuite) TestUploadWithoutStorage() {
	uc := NewUserUseCase(s.uc.stores, s.publisher, nil, logger.NewNop())
	_, err := uc.UploadProfilePicture(s.ctx, uuid.New(), strings.NewReader("x"))
	s.ErrorIs(err, apperror.ErrInternal)
}

func TestUserUseCaseSuite(t *testing.T) {
	suite.Run(t, new(UserUseCaseSuite))
}
