package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type TotpAccount struct {
	Issuer string `yaml:"issuer"`
	Label  string `yaml:"label"`
	Secret string `yaml:"secret" validate:"required"`
}

type totpFile struct {
	Accounts []TotpAccount `yaml:"accounts" validate:"dive"`
}

// LoadTotpAccounts reads the accounts shown by the totp screen.
func LoadTotpAccounts(filename string) ([]TotpAccount, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read totp file: %w", err)
	}
	var f totpFile
	if err = yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("unable to decode totp file %s: %w", filename, err)
	}
	if err = validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid totp file %s: %w", filename, err)
	}
	return f.Accounts, nil
}
