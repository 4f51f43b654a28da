package auth

import (
	"time"

	"tcw1/internal/utils"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const (
	totpIssuer      = "TCW1"
	backupCodeCount = 10
	backupCodeLen   = 8
)

// TwoFactorSetup is returned once; the backup codes are only stored hashed.
type TwoFactorSetup struct {
	Secret      string   `json:"secret"`
	OTPAuthURL  string   `json:"otpauthUrl"`
	BackupCodes []string `json:"backupCodes"`
}

func generateTOTPKey(email string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: email,
	})
}

// validateTOTP accepts codes one step either side of now.
func validateTOTP(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func generateBackupCodes(cost int) (plain []string, hashed []string, err error) {
	plain = make([]string, 0, backupCodeCount)
	hashed = make([]string, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		code, err := utils.RandomUpperAlphanum(backupCodeLen)
		if err != nil {
			return nil, nil, err
		}
		h, err := bcrypt.GenerateFromPassword([]byte(code), cost)
		if err != nil {
			return nil, nil, err
		}
		plain = append(plain, code)
		hashed = append(hashed, string(h))
	}
	return plain, hashed, nil
}

// consumeBackupCode returns the remaining hashes with the matching one removed.
func consumeBackupCode(code string, hashed []string) ([]string, bool) {
	for i, h := range hashed {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(code)) == nil {
			remaining := make([]string, 0, len(hashed)-1)
			remaining = append(remaining, hashed[:i]...)
			remaining = append(remaining, hashed[i+1:]...)
			return remaining, true
		}
	}
	return hashed, false
}
