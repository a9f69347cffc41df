package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/apetrovs/databoard/internal/common"
	"github.com/apetrovs/databoard/internal/server/auth"
	"github.com/apetrovs/databoard/internal/server/config"
)

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                  "k",
		TokenValidityDuration:      4 * time.Hour,
		RememberMeValidityDuration: 7 * 24 * time.Hour,
		BcryptCost:                 bcrypt.MinCost,
	}
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	return NewService(repo, testConfig())
}

func validToken(t *testing.T) string {
	t.Helper()
	tok, err := auth.GenerateToken(1, []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return tok
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:      "Teste",
		Email:     "t@test.com",
		Password:  "test123",
		BirthDate: "17/09/1991",
	}
}

type fakeRepo struct {
	existsOut bool
	existsErr error

	createOut *User
	createErr error

	getByEmailOut *User
	getByEmailErr error

	getByIDOut *User
	getByIDErr error

	listOut   []User
	listTotal int
	listErr   error

	gotOffset int
	gotLimit  int
}

func (f *fakeRepo) Create(ctx context.Context, u *User) (*User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = 1
	return u, nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	return f.getByEmailOut, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDOut, nil
}

func (f *fakeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return f.existsOut, f.existsErr
}

func (f *fakeRepo) List(ctx context.Context, offset, limit int) ([]User, int, error) {
	f.gotOffset, f.gotLimit = offset, limit
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listOut, f.listTotal, nil
}

// --- Register ---

func TestRegister_RequiresToken(t *testing.T) {
	s := newTestService(t, &fakeRepo{})

	_, err := s.Register(context.Background(), "", validInput())
	if !errors.Is(err, common.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}

	_, err = s.Register(context.Background(), "not.a.jwt", validInput())
	if !errors.Is(err, common.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRegister_ValidationPrecedence(t *testing.T) {
	// password, then uniqueness, then syntax, then date: the first
	// failing check decides the error even when later ones would also
	// fail.
	tests := []struct {
		name    string
		mutate  func(in *RegisterInput)
		exists  bool
		wantErr *common.Error
	}{
		{
			name: "weak password wins over everything",
			mutate: func(in *RegisterInput) {
				in.Password = "short"
				in.Email = "broken@"
				in.BirthDate = "31/02/1991"
			},
			exists:  true,
			wantErr: common.ErrWeakPassword,
		},
		{
			name: "taken e-mail wins over syntax and date",
			mutate: func(in *RegisterInput) {
				in.Email = "broken@"
				in.BirthDate = "31/02/1991"
			},
			exists:  true,
			wantErr: common.ErrEmailTaken,
		},
		{
			name: "bad syntax wins over bad date",
			mutate: func(in *RegisterInput) {
				in.Email = "broken@"
				in.BirthDate = "31/02/1991"
			},
			wantErr: common.ErrInvalidEmail,
		},
		{
			name: "bad date format",
			mutate: func(in *RegisterInput) {
				in.BirthDate = "31/02/1991"
			},
			wantErr: common.ErrBadDateFormat,
		},
		{
			name: "future date",
			mutate: func(in *RegisterInput) {
				in.BirthDate = time.Now().AddDate(0, 0, 1).Format("02/01/2006")
			},
			wantErr: common.ErrFutureDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, &fakeRepo{existsOut: tt.exists})
			in := validInput()
			tt.mutate(&in)

			_, err := s.Register(context.Background(), validToken(t), in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegister_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	s := newTestService(t, repo)

	in := validInput()
	in.Addresses = []AddressInput{{
		CEP:          "01310-100",
		Street:       "Avenida Paulista",
		StreetNumber: 900,
		Neighborhood: "Bela Vista",
		City:         "Sao Paulo",
		State:        "SP",
	}}

	user, err := s.Register(context.Background(), validToken(t), in)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if user.ID == 0 {
		t.Fatalf("expected a numeric id to be assigned")
	}
	if user.PasswordHash == in.Password {
		t.Fatalf("password must not be stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		t.Fatalf("stored hash does not match the password: %v", err)
	}
	if len(user.Addresses) != 1 || user.Addresses[0].UserID != user.ID {
		t.Fatalf("address not attached to created user: %+v", user.Addresses)
	}

	// same e-mail again conflicts
	_, err = s.Register(context.Background(), validToken(t), validInput())
	if !errors.Is(err, common.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on duplicate, got %v", err)
	}
}

func TestRegister_InsertRaceYieldsEmailTaken(t *testing.T) {
	// the pre-check passed but the unique index rejected the insert:
	// both paths must surface the same error
	s := newTestService(t, &fakeRepo{existsOut: false, createErr: common.ErrEmailTaken})

	_, err := s.Register(context.Background(), validToken(t), validInput())
	if !errors.Is(err, common.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

// --- Login ---

func TestLogin_UserNotFound(t *testing.T) {
	s := newTestService(t, &fakeRepo{getByEmailErr: common.ErrUserNotFound})

	_, err := s.Login(context.Background(), LoginInput{Email: "none@test.com", Password: "test123"})
	if !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("test123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	s := newTestService(t, &fakeRepo{getByEmailOut: &User{ID: 7, Email: "t@test.com", PasswordHash: string(hash)}})

	_, err = s.Login(context.Background(), LoginInput{Email: "t@test.com", Password: "wrong99"})
	if !errors.Is(err, common.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestRepositoryFailuresKeepTheirCause(t *testing.T) {
	// an outage must stay inspectable in the returned chain instead of
	// being collapsed into the bare internal-error sentinel
	boom := errors.New("connection refused: db down")

	tests := []struct {
		name string
		repo *fakeRepo
		call func(s *Service) error
	}{
		{
			name: "login",
			repo: &fakeRepo{getByEmailErr: boom},
			call: func(s *Service) error {
				_, err := s.Login(context.Background(), LoginInput{Email: "t@test.com", Password: "test123"})
				return err
			},
		},
		{
			name: "get user",
			repo: &fakeRepo{getByIDErr: boom},
			call: func(s *Service) error {
				_, err := s.GetUser(context.Background(), validToken(t), 1)
				return err
			},
		},
		{
			name: "list users",
			repo: &fakeRepo{listErr: boom},
			call: func(s *Service) error {
				_, err := s.ListUsers(context.Background(), validToken(t), ListInput{})
				return err
			},
		},
		{
			name: "register",
			repo: &fakeRepo{createErr: boom},
			call: func(s *Service) error {
				_, err := s.Register(context.Background(), validToken(t), validInput())
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(newTestService(t, tt.repo))
			if !errors.Is(err, boom) {
				t.Fatalf("cause lost from chain: %v", err)
			}
			var appErr *common.Error
			if errors.As(err, &appErr) {
				t.Fatalf("expected an unclassified error, got %v", appErr)
			}
		})
	}
}

func TestLogin_TokenValidityDependsOnRememberMe(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("test123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	repo := &fakeRepo{getByEmailOut: &User{ID: 7, Email: "t@test.com", PasswordHash: string(hash)}}
	s := newTestService(t, repo)

	tests := []struct {
		name       string
		rememberMe bool
		wantSecs   int64
	}{
		{name: "regular session", rememberMe: false, wantSecs: 14400},
		{name: "remember me", rememberMe: true, wantSecs: 604800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Login(context.Background(), LoginInput{
				Email:      "t@test.com",
				Password:   "test123",
				RememberMe: tt.rememberMe,
			})
			if err != nil {
				t.Fatalf("Login error: %v", err)
			}
			if res.User.ID != 7 {
				t.Fatalf("unexpected user in result: %+v", res.User)
			}

			claims := &auth.Claims{}
			_, err = jwt.ParseWithClaims(res.Token, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte("k"), nil
			})
			if err != nil {
				t.Fatalf("token parse error: %v", err)
			}
			if claims.UserID != 7 {
				t.Fatalf("token user id: got %d want 7", claims.UserID)
			}
			got := claims.ExpiresAt.Unix() - claims.IssuedAt.Unix()
			if got != tt.wantSecs {
				t.Fatalf("token validity: got %ds want %ds", got, tt.wantSecs)
			}
		})
	}
}

// --- GetUser ---

func TestGetUser_RequiresToken(t *testing.T) {
	s := newTestService(t, &fakeRepo{})

	_, err := s.GetUser(context.Background(), "", 1)
	if !errors.Is(err, common.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestService(t, &fakeRepo{getByIDErr: common.ErrUserNotFound})

	_, err := s.GetUser(context.Background(), validToken(t), 42)
	if !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUser_Success(t *testing.T) {
	want := &User{ID: 42, Name: "Teste", Email: "t@test.com"}
	s := newTestService(t, &fakeRepo{getByIDOut: want})

	got, err := s.GetUser(context.Background(), validToken(t), 42)
	if err != nil {
		t.Fatalf("GetUser error: %v", err)
	}
	if got.ID != want.ID || got.Email != want.Email {
		t.Fatalf("unexpected user: %+v", got)
	}
}

// --- ListUsers ---

func TestListUsers_RequiresToken(t *testing.T) {
	s := newTestService(t, &fakeRepo{})

	_, err := s.ListUsers(context.Background(), "", ListInput{})
	if !errors.Is(err, common.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestListUsers_DefaultsAndWindow(t *testing.T) {
	repo := &fakeRepo{listOut: make([]User, 10), listTotal: 51}
	s := newTestService(t, repo)

	page, err := s.ListUsers(context.Background(), validToken(t), ListInput{})
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}

	if repo.gotOffset != 0 || repo.gotLimit != 10 {
		t.Fatalf("defaults not applied: offset=%d limit=%d", repo.gotOffset, repo.gotLimit)
	}
	if page.Count != 51 {
		t.Fatalf("count: got %d want 51", page.Count)
	}
	if !page.PageInfo.HasNextPage || page.PageInfo.HasPreviousPage {
		t.Fatalf("unexpected page info: %+v", page.PageInfo)
	}
}

func TestListUsers_LastPage(t *testing.T) {
	offset, limit := 45, 15
	repo := &fakeRepo{listOut: make([]User, 6), listTotal: 51}
	s := newTestService(t, repo)

	page, err := s.ListUsers(context.Background(), validToken(t), ListInput{Offset: &offset, Limit: &limit})
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}

	if len(page.Users) != 6 {
		t.Fatalf("expected the 6 remaining users, got %d", len(page.Users))
	}
	if page.PageInfo.HasNextPage || !page.PageInfo.HasPreviousPage {
		t.Fatalf("unexpected page info: %+v", page.PageInfo)
	}
}
