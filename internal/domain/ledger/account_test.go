package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSystemCode(t *testing.T) {
	for _, code := range SystemCodes() {
		assert.True(t, IsSystemCode(code), "code %s", code)
	}
	assert.False(t, IsSystemCode("9999"))
	assert.False(t, IsSystemCode("U-a1b2c3d4"))
	assert.False(t, IsSystemCode(""))
}

func TestNewUserMainAccount(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()

	account, err := NewUserMainAccount(userID, walletID)
	require.NoError(t, err)

	assert.Equal(t, userID, *account.UserID)
	assert.Equal(t, walletID, account.WalletID)
	assert.Equal(t, PurposeMain, account.Purpose)
	assert.False(t, account.IsSystem())
	assert.Contains(t, account.Code, "U-")

	_, err = NewUserMainAccount(uuid.Nil, walletID)
	assert.Error(t, err)
	_, err = NewUserMainAccount(userID, uuid.Nil)
	assert.Error(t, err)
}

func TestNewSystemAccount(t *testing.T) {
	walletID := uuid.New()

	tests := []struct {
		name     string
		acctName string
		code     string
		wantErr  bool
	}{
		{"cash", "Platform Cash", CodeCash, false},
		{"liability", "Customer Liability", CodeLiability, false},
		{"referral pool", "Referral Pool", CodeReferralPool, false},
		{"reserved set only", "Misc", "5000", true},
		{"empty name", "", CodeCash, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := NewSystemAccount(walletID, tt.acctName, tt.code)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, account.IsSystem())
			assert.Equal(t, PurposeSystem, account.Purpose)
			assert.Nil(t, account.UserID)
		})
	}
}

func TestAccount_SoftDelete(t *testing.T) {
	t.Run("user account", func(t *testing.T) {
		account, err := NewUserMainAccount(uuid.New(), uuid.New())
		require.NoError(t, err)

		require.NoError(t, account.SoftDelete())
		assert.True(t, account.IsDeleted())

		// deleting twice fails
		assert.Error(t, account.SoftDelete())
	})

	t.Run("system account is protected", func(t *testing.T) {
		account, err := NewSystemAccount(uuid.New(), "Platform Cash", CodeCash)
		require.NoError(t, err)

		assert.Error(t, account.SoftDelete())
		assert.False(t, account.IsDeleted())
	})
}

func TestNewUserWallet(t *testing.T) {
	userID := uuid.New()
	wallet := NewUserWallet(userID)

	assert.Equal(t, userID, *wallet.UserID)
	assert.NotEmpty(t, wallet.Name)

	system := NewSystemWallet("operator")
	assert.Nil(t, system.UserID)
	assert.Equal(t, "operator", system.Name)
}
