package objective

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/internal/domain/user"
	"github.com/khoahotran/learnerhub/internal/testutil"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type ObjectiveSuite struct {
	suite.Suite
	ctx        context.Context
	objectives *testutil.ObjectiveRepo
	users      *testutil.UserRepo
	uc         *ObjectiveUseCase
	alice      *user.UserProfile
}

func (s *ObjectiveSuite) SetupTest() {
	s.ctx = context.Background()
	s.objectives = testutil.NewObjectiveRepo()
	s.users = testutil.NewUserRepo()
	s.uc = NewObjectiveUseCase(s.objectives, s.users, logger.NewNop())

	s.alice = user.New("alice", "a@x.com", nil)
	s.Require().NoError(s.users.Create(s.ctx, s.alice))
}

func (s *ObjectiveSuite) TestAddListUpdateDelete() {
	list, err := s.uc.AddForUser(s.ctx, s.alice.ID, ObjectiveInput{Title: "Learn Go", ProgressPercentage: 10})
	s.Require().NoError(err)
	s.Require().Len(list, 1)

	list, err = s.uc.AddForUser(s.ctx, s.alice.ID, ObjectiveInput{Title: "Learn SQL"})
	s.Require().NoError(err)
	s.Require().Len(list, 2)

	listed, err := s.uc.ListForUser(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal([]string{"Learn Go", "Learn SQL"}, []string{listed[0].Title, listed[1].Title})

	updated, err := s.uc.UpdateForUser(s.ctx, s.alice.ID, list[0].ID, ObjectiveInput{Title: "Master Go", ProgressPercentage: 50})
	s.Require().NoError(err)
	s.Equal("Master Go", updated.Title)
	s.Equal(50, updated.ProgressPercentage)

	s.Require().NoError(s.uc.DeleteForUser(s.ctx, s.alice.ID, list[1].ID))
	listed, err = s.uc.ListForUser(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Len(listed, 1)
	s.Equal(1, s.objectives.Count())
}

func (s *ObjectiveSuite) TestAddSameTitleReusesObjective() {
	first, err := s.uc.AddForUser(s.ctx, s.alice.ID, ObjectiveInput{Title: "Learn Go"})
	s.Require().NoError(err)
	second, err := s.uc.AddForUser(s.ctx, s.alice.ID, ObjectiveInput{Title: "Learn Go"})
	s.Require().NoError(err)

	s.Len(second, 1)
	s.Equal(first[0].ID, second[0].ID)
	s.Equal(1, s.objectives.Count())
}

func (s *ObjectiveSuite) TestFourthObjectiveRejected() {
	for _, title := range []string{"A1", "B2", "C3"} {
		_, err := s.uc.AddForUser(s.ctx, s.alice.ID, ObjectiveInput{Title: title})
		s.Require().NoError(err)
	}
	_, err := s.uc.AddForUser(s.ctx, s.alice.ID, ObjectiveInput{Title: "D4"})
	s.ErrorIs(err, apperror.ErrInvalidInput)
	s.Equal(3, s.objectives.Count())
}

func (s *ObjectiveSuite) TestForeignObjectiveIsNotFound() {
	bob := user.New("bobby", "b@x.com", nil)
	s.Require().NoError(s.users.Create(s.ctx, bob))
	bobs, err := s.uc.AddForUser(s.ctx, bob.ID, ObjectiveInput{Title: "Bob's goal"})
	s.Require().NoError(err)

	_, err = s.uc.UpdateForUser(s.ctx, s.alice.ID, bobs[0].ID, ObjectiveInput{Title: "Hijack"})
	s.True(apperror.IsNotFound(err))
	s.True(apperror.IsNotFound(s.uc.DeleteForUser(s.ctx, s.alice.ID, bobs[0].ID)))
}

func (s *ObjectiveSuite) TestUpdateProgressBounds() {
	list, err := s.uc.AddForUser(s.ctx, s.alice.ID, ObjectiveInput{Title: "Learn Go"})
	s.Require().NoError(err)

	_, err = s.uc.UpdateProgress(s.ctx, list[0].ID, 101)
	s.ErrorIs(err, apperror.ErrInvalidInput)

	o, err := s.uc.UpdateProgress(s.ctx, list[0].ID, 100)
	s.Require().NoError(err)
	s.Equal(100, o.ProgressPercentage)

	_, err = s.uc.UpdateProgress(s.ctx, uuid.New(), 5)
	s.True(apperror.IsNotFound(err))
}

func (s *ObjectiveSuite) TestUnknownUser() {
	_, err := s.uc.ListForUser(s.ctx, uuid.New())
	s.True(apperror.IsNotFound(err))
}

func TestObjectiveSuite(t *testing.T) {
	suite.Run(t, new(ObjectiveSuite))
}

func TestResolveValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewObjectiveRepo()
	r := NewResolver(repo, logger.NewNop())

	_, err := r.Resolve(ctx, uuid.New(), []ObjectiveInput{
		{Title: "Fine"},
		{Title: strings.Repeat("x", 101)},
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, 0, repo.Count())
}

func TestResolveDropsMissingAndForeignIDs(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewObjectiveRepo()
	r := NewResolver(repo, logger.NewNop())
	owner, stranger := uuid.New(), uuid.New()

	mine := objective.New(owner, "Mine", "", 0, nil)
	theirs := objective.New(stranger, "Theirs", "", 0, nil)
	require.NoError(t, repo.Create(ctx, mine))
	require.NoError(t, repo.Create(ctx, theirs))

	got, err := r.Resolve(ctx, owner, []ObjectiveInput{{ID: theirs.ID}, {ID: uuid.New()}, {ID: mine.ID, Title: "ignored"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
	assert.Equal(t, "Mine", got[0].Title)
}
