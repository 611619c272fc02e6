package accountservice

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var equalDecimal = cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) })

func randomAccount(t *testing.T) (domain.Account, string, string) {
	t.Helper()

	password := randompkg.String(10)
	pin := randompkg.Pin()

	hashedPassword, err := passpkg.Hash(password)
	require.NoError(t, err)

	hashedPin, err := passpkg.Hash(pin)
	require.NoError(t, err)

	account := domain.Account{
		ID:             randompkg.Intn(1000) + 1,
		Name:           randompkg.Name(),
		Email:          randompkg.Email(),
		CardNumber:     randompkg.CardNumber(),
		HashedPassword: hashedPassword,
		HashedPin:      hashedPin,
		Balance:        decimal.Zero,
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
	}

	return account, password, pin
}

type eqCreateAccountParamsMatcher struct {
	arg      domain.CreateAccountParams
	password string
	pin      string
}

func (e eqCreateAccountParamsMatcher) Matches(x interface{}) bool {
	arg, ok := x.(domain.CreateAccountParams)
	if !ok {
		return false
	}

	if err := passpkg.Check(e.password, arg.HashedPassword); err != nil {
		return false
	}

	if err := passpkg.Check(e.pin, arg.HashedPin); err != nil {
		return false
	}

	e.arg.HashedPassword = arg.HashedPassword
	e.arg.HashedPin = arg.HashedPin

	return reflect.DeepEqual(e.arg, arg)
}

func (e eqCreateAccountParamsMatcher) String() string {
	return fmt.Sprintf("matches arg %v, password %v and pin %v", e.arg, e.password, e.pin)
}

func EqCreateAccountParams(arg domain.CreateAccountParams, password, pin string) gomock.Matcher {
	return eqCreateAccountParamsMatcher{arg, password, pin}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	account, password, pin := randomAccount(t)
	secondCard := randompkg.CardNumber()

	arg := domain.CreateAccountParams{
		Name:       account.Name,
		Email:      account.Email,
		CardNumber: account.CardNumber,
	}

	testCases := []struct {
		name       string
		pin        string
		buildStubs func(repo *MockRepo, cards *MockCardAllocator)
		wantErr    error
	}{
		{
			name: "OK",
			pin:  pin,
			buildStubs: func(repo *MockRepo, cards *MockCardAllocator) {
				cards.EXPECT().Allocate(gomock.Any()).Times(1).Return(account.CardNumber, nil)
				repo.EXPECT().
					Create(gomock.Any(), EqCreateAccountParams(arg, password, pin)).
					Times(1).
					Return(account, nil)
			},
		},
		{
			name: "RetryOnCardNumberRace",
			pin:  pin,
			buildStubs: func(repo *MockRepo, cards *MockCardAllocator) {
				second := arg
				second.CardNumber = secondCard

				gomock.InOrder(
					cards.EXPECT().Allocate(gomock.Any()).Return(secondCard, nil),
					repo.EXPECT().
						Create(gomock.Any(), EqCreateAccountParams(second, password, pin)).
						Return(domain.Account{}, domain.ErrDuplicateCardNumber),
					cards.EXPECT().Allocate(gomock.Any()).Return(account.CardNumber, nil),
					repo.EXPECT().
						Create(gomock.Any(), EqCreateAccountParams(arg, password, pin)).
						Return(account, nil),
				)
			},
		},
		{
			name: "CardNumberRaceExhausted",
			pin:  pin,
			buildStubs: func(repo *MockRepo, cards *MockCardAllocator) {
				cards.EXPECT().Allocate(gomock.Any()).Times(maxRegisterAttempts).Return(account.CardNumber, nil)
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(maxRegisterAttempts).
					Return(domain.Account{}, domain.ErrDuplicateCardNumber)
			},
			wantErr: domain.ErrCardNumberExhausted,
		},
		{
			name: "AllocatorExhausted",
			pin:  pin,
			buildStubs: func(repo *MockRepo, cards *MockCardAllocator) {
				cards.EXPECT().Allocate(gomock.Any()).Times(1).Return("", domain.ErrCardNumberExhausted)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrCardNumberExhausted,
		},
		{
			name: "DuplicateEmail",
			pin:  pin,
			buildStubs: func(repo *MockRepo, cards *MockCardAllocator) {
				cards.EXPECT().Allocate(gomock.Any()).Times(1).Return(account.CardNumber, nil)
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrDuplicateEmail)
			},
			wantErr: domain.ErrDuplicateEmail,
		},
		{
			name: "InvalidPinFormat",
			pin:  "12a",
			buildStubs: func(repo *MockRepo, cards *MockCardAllocator) {
				cards.EXPECT().Allocate(gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidPinFormat,
		},
		{
			name: "StorageUnavailable",
			pin:  pin,
			buildStubs: func(repo *MockRepo, cards *MockCardAllocator) {
				cards.EXPECT().Allocate(gomock.Any()).Times(1).Return(account.CardNumber, nil)
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrStorageUnavailable)
			},
			wantErr: errorspkg.ErrStorageUnavailable,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			cards := NewMockCardAllocator(ctrl)
			tc.buildStubs(repo, cards)

			service := New(repo, cards)

			got, err := service.Register(context.Background(), account.Name, account.Email, password, tc.pin)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(account.Public(), got, equalDecimal); diff != "" {
				t.Errorf("service.Register returned unexpected difference (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	account, password, _ := randomAccount(t)

	testCases := []struct {
		name       string
		password   string
		buildStubs func(repo *MockRepo)
		wantErr    error
	}{
		{
			name:     "OK",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByEmail(gomock.Any(), account.Email).Times(1).Return(account, nil)
			},
		},
		{
			name:     "WrongPassword",
			password: password + "x",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByEmail(gomock.Any(), account.Email).Times(1).Return(account, nil)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:     "UnknownEmail",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetByEmail(gomock.Any(), account.Email).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:     "StorageUnavailable",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetByEmail(gomock.Any(), account.Email).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrStorageUnavailable)
			},
			wantErr: errorspkg.ErrStorageUnavailable,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo, nil).Login(context.Background(), account.Email, tc.password)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(account.Public(), got, equalDecimal); diff != "" {
				t.Errorf("service.Login returned unexpected difference (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetAndList(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a1, _, _ := randomAccount(t)
	a2, _, _ := randomAccount(t)

	repo := NewMockRepo(ctrl)
	repo.EXPECT().Get(gomock.Any(), a1.ID).Times(1).Return(a1, nil)
	repo.EXPECT().Get(gomock.Any(), int64(0)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
	repo.EXPECT().List(gomock.Any()).Times(1).Return([]domain.Account{a1, a2}, nil)

	service := New(repo, nil)

	got, err := service.Get(context.Background(), a1.ID)
	require.NoError(t, err)
	require.Equal(t, a1.Public(), got)

	_, err = service.Get(context.Background(), 0)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	list, err := service.List(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff([]domain.AccountPublic{a1.Public(), a2.Public()}, list, equalDecimal); diff != "" {
		t.Errorf("service.List returned unexpected difference (-want +got):\n%s", diff)
	}
}
