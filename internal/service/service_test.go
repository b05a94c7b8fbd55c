package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"zerobarrier/internal/apperr"
	"zerobarrier/internal/auth"
	"zerobarrier/internal/models"
	"zerobarrier/internal/repository"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var errDown = errors.New("connection refused")

// mockRepo wraps another repository and lets a test replace single methods.
type mockRepo struct {
	repository.AccountRepository
	getByEmailFn func(ctx context.Context, email string) (*models.Account, error)
	getByIDFn    func(ctx context.Context, id string) (*models.Account, error)
	createFn     func(ctx context.Context, a *models.Account) error
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return m.AccountRepository.GetByEmail(ctx, email)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return m.AccountRepository.GetByID(ctx, id)
}

func (m *mockRepo) Create(ctx context.Context, a *models.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	return m.AccountRepository.Create(ctx, a)
}

type recordingNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (n *recordingNotifier) SendVerification(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = make(map[string]string)
	}
	n.tokens[email] = token
	return n.err
}

type fixture struct {
	svc      AuthService
	repo     *repository.MemoryRepository
	tokens   *auth.TokenManager
	notifier *recordingNotifier
}

func newFixture(t *testing.T, opts AuthOptions) *fixture {
	t.Helper()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		repo:     repository.NewMemoryRepository(),
		tokens:   auth.NewTokenManager(testSecret, 7*24*time.Hour),
		notifier: &recordingNotifier{},
	}
	f.svc = NewAuthService(f.repo, f.tokens, hasher, f.notifier, opts, zap.NewNop())
	return f
}

func (f *fixture) withRepo(t *testing.T, repo repository.AccountRepository) AuthService {
	t.Helper()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(repo, f.tokens, hasher, f.notifier, AuthOptions{}, zap.NewNop())
}

func validSignup(email string) SignupInput {
	return SignupInput{
		Email:         email,
		Password:      "hunter22",
		CompanyName:   "Acme Builders",
		ContactPerson: "Priya",
		Phone:         "+919876543210",
	}
}

func TestSignup_CreatesVerifiedEmployerWithDefaults(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()

	acc, err := f.svc.Signup(ctx, validSignup("boss@acme.com"))
	require.NoError(t, err)

	assert.NotEmpty(t, acc.ID)
	assert.Equal(t, models.RoleEmployer, acc.Role)
	assert.True(t, acc.IsVerified)
	assert.Empty(t, acc.VerificationTokenHash)
	assert.NotEqual(t, "hunter22", acc.PasswordHash)
	assert.Empty(t, f.notifier.tokens)

	p := acc.Profile.Employer
	require.NotNil(t, p)
	assert.Equal(t, "Acme Builders", p.CompanyName)
	assert.Equal(t, models.EmployerTypeCompany, p.EmployerType)
	assert.Equal(t, "Private Limited", p.CompanyType)
	assert.Equal(t, "Other", p.Industry)
	assert.Equal(t, models.CompanySize2To10, p.CompanySize)
	assert.Equal(t, "Manager", p.ContactPerson.Designation)
	assert.Equal(t, "+919876543210", p.ContactPerson.Phone)
	assert.Equal(t, models.DocumentsPending, p.Documents.Status)
	assert.Equal(t, "free", p.Subscription.Plan)
	assert.Equal(t, 3, p.Subscription.JobPostsRemaining)

	stored, err := f.repo.GetByEmail(ctx, "boss@acme.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, stored.ID)
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()

	missing := validSignup("a@b.c")
	missing.CompanyName = " "
	_, err := f.svc.Signup(ctx, missing)
	assert.ErrorIs(t, err, ErrMissingFields)

	noPhone := validSignup("nophone@b.c")
	noPhone.Phone = ""
	_, err = f.svc.Signup(ctx, noPhone)
	assert.NoError(t, err)

	_, err = f.svc.Signup(ctx, validSignup("not-an-email"))
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.svc.Signup(ctx, validSignup("a@b@c"))
	assert.ErrorIs(t, err, ErrInvalidEmail)

	weak := validSignup("weak@b.c")
	weak.Password = "12345"
	_, err = f.svc.Signup(ctx, weak)
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	long := validSignup("long@b.c")
	long.Password = strings.Repeat("p", auth.MaxPasswordLength+8)
	_, err = f.svc.Signup(ctx, long)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	longest := validSignup("longest@b.c")
	longest.Password = strings.Repeat("p", auth.MaxPasswordLength)
	_, err = f.svc.Signup(ctx, longest)
	assert.NoError(t, err)
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup("dup@acme.com"))
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, validSignup("dup@acme.com"))
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Emails are case-sensitive keys.
	_, err = f.svc.Signup(ctx, validSignup("DUP@acme.com"))
	assert.NoError(t, err)
}

func TestSignup_RaceOnCreateStillConflicts(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	svc := f.withRepo(t, &mockRepo{
		AccountRepository: f.repo,
		createFn: func(context.Context, *models.Account) error {
			return repository.ErrDuplicateEmail
		},
	})

	_, err := svc.Signup(context.Background(), validSignup("race@acme.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignup_StoreFailureIsUpstream(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	svc := f.withRepo(t, &mockRepo{
		AccountRepository: f.repo,
		getByEmailFn: func(context.Context, string) (*models.Account, error) {
			return nil, errDown
		},
	})

	_, err := svc.Signup(context.Background(), validSignup("x@acme.com"))
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestLogin_CorrectPasswordIssuesToken(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()

	acc, err := f.svc.Signup(ctx, validSignup("boss@acme.com"))
	require.NoError(t, err)

	session, err := f.svc.Login(ctx, "boss@acme.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, session.Account.ID)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), session.ExpiresAt, 5*time.Second)

	id, err := f.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: acc.ID, Email: "boss@acme.com", Role: models.RoleEmployer}, id)
}

func TestLogin_WrongPasswordAndUnknownEmailFailAlike(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup("boss@acme.com"))
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, "boss@acme.com", "nope-nope")
	_, unknownEmail := f.svc.Login(ctx, "ghost@acme.com", "hunter22")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword, unknownEmail)
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(unknownEmail))
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t, AuthOptions{})

	_, err := f.svc.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = f.svc.Login(context.Background(), "a@b.c", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLogin_StoreFailure(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	svc := f.withRepo(t, &mockRepo{
		AccountRepository: f.repo,
		getByEmailFn: func(context.Context, string) (*models.Account, error) {
			return nil, errDown
		},
	})

	_, err := svc.Login(context.Background(), "a@b.c", "hunter22")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestVerificationFlow_Required(t *testing.T) {
	f := newFixture(t, AuthOptions{RequireVerification: true})
	ctx := context.Background()

	acc, err := f.svc.Signup(ctx, validSignup("new@acme.com"))
	require.NoError(t, err)
	assert.False(t, acc.IsVerified)
	assert.NotEmpty(t, acc.VerificationTokenHash)

	token := f.notifier.tokens["new@acme.com"]
	require.Len(t, token, 64)
	assert.NotEqual(t, token, acc.VerificationTokenHash)

	// Right password, unverified account.
	_, err = f.svc.Login(ctx, "new@acme.com", "hunter22")
	require.ErrorIs(t, err, ErrNotVerified)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	// Wrong password still reads as bad credentials.
	_, err = f.svc.Login(ctx, "new@acme.com", "wrong-pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, f.svc.Verify(ctx, "new@acme.com", "bad"), ErrInvalidVerification)
	assert.ErrorIs(t, f.svc.Verify(ctx, "ghost@acme.com", token), ErrInvalidVerification)
	assert.ErrorIs(t, f.svc.Verify(ctx, "new@acme.com", ""), ErrMissingVerification)

	require.NoError(t, f.svc.Verify(ctx, "new@acme.com", token))
	require.NoError(t, f.svc.Verify(ctx, "new@acme.com", token))

	_, err = f.svc.Login(ctx, "new@acme.com", "hunter22")
	assert.NoError(t, err)
}

func TestSignup_NotifierFailureDoesNotFailSignup(t *testing.T) {
	f := newFixture(t, AuthOptions{RequireVerification: true})
	f.notifier.err = errors.New("telegram down")

	_, err := f.svc.Signup(context.Background(), validSignup("n@acme.com"))
	assert.NoError(t, err)
}

func TestVerify_AutoVerifiedIsNoop(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup("auto@acme.com"))
	require.NoError(t, err)

	assert.NoError(t, f.svc.Verify(ctx, "auto@acme.com", ""))
	assert.ErrorIs(t, f.svc.Verify(ctx, "", ""), ErrMissingVerification)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup("boss@acme.com"))
	require.NoError(t, err)
	session, err := f.svc.Login(ctx, "boss@acme.com", "hunter22")
	require.NoError(t, err)

	t.Run("valid token resolves identity", func(t *testing.T) {
		id := f.svc.Authenticate(ctx, session.Token)
		require.NotNil(t, id)
		assert.Equal(t, session.Account.ID, id.UserID)
		assert.Equal(t, models.RoleEmployer, id.Role)
	})

	t.Run("idempotent and read-only", func(t *testing.T) {
		before, err := f.repo.GetByID(ctx, session.Account.ID)
		require.NoError(t, err)

		first := f.svc.Authenticate(ctx, session.Token)
		second := f.svc.Authenticate(ctx, session.Token)
		assert.Equal(t, first, second)

		after, err := f.repo.GetByID(ctx, session.Account.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("missing and garbage tokens", func(t *testing.T) {
		assert.Nil(t, f.svc.Authenticate(ctx, ""))
		assert.Nil(t, f.svc.Authenticate(ctx, "garbage"))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewTokenManager("ffffffffffffffffffffffffffffffff", time.Hour)
		tok, _, err := other.Issue(session.Account.ID, "boss@acme.com", models.RoleEmployer)
		require.NoError(t, err)
		assert.Nil(t, f.svc.Authenticate(ctx, tok))
	})

	t.Run("expired token", func(t *testing.T) {
		expired := auth.NewTokenManager(testSecret, -time.Minute)
		tok, _, err := expired.Issue(session.Account.ID, "boss@acme.com", models.RoleEmployer)
		require.NoError(t, err)
		assert.Nil(t, f.svc.Authenticate(ctx, tok))
	})

	t.Run("store failure", func(t *testing.T) {
		svc := f.withRepo(t, &mockRepo{
			AccountRepository: f.repo,
			getByIDFn: func(context.Context, string) (*models.Account, error) {
				return nil, errDown
			},
		})
		assert.Nil(t, svc.Authenticate(ctx, session.Token))
	})

	t.Run("deleted account", func(t *testing.T) {
		f.repo.Delete(session.Account.ID)
		assert.Nil(t, f.svc.Authenticate(ctx, session.Token))
	})
}

func TestMe(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()

	acc, err := f.svc.Signup(ctx, validSignup("me@acme.com"))
	require.NoError(t, err)

	got, err := f.svc.Me(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@acme.com", got.Email)

	f.repo.Delete(acc.ID)
	_, err = f.svc.Me(ctx, acc.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()

	acc, err := f.svc.Signup(ctx, validSignup("cp@acme.com"))
	require.NoError(t, err)
	session, err := f.svc.Login(ctx, "cp@acme.com", "hunter22")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, acc.ID, "", "newpass1"), ErrMissingPasswords)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, acc.ID, "hunter22", "short"), ErrWeakPassword)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, acc.ID, "hunter22", strings.Repeat("n", 80)), ErrPasswordTooLong)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, acc.ID, "not-it", "newpass1"), ErrWrongCurrentPassword)

	require.NoError(t, f.svc.ChangePassword(ctx, acc.ID, "hunter22", "newpass1"))

	_, err = f.svc.Login(ctx, "cp@acme.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "cp@acme.com", "newpass1")
	assert.NoError(t, err)

	// No revocation: the old session stays valid.
	assert.NotNil(t, f.svc.Authenticate(ctx, session.Token))

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, "missing-id", "newpass1", "another1"), ErrAccountNotFound)
}
