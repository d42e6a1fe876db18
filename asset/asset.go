package asset

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NativeID is the sentinel identifying the network's native currency.
const NativeID = "native"

const maxCodeLength = 12

var ErrInvalidAsset = errors.New("invalid asset")

// ID identifies a tradeable asset, either the native sentinel or a
// `CODE:ISSUER` pair. The zero value is not a valid asset.
type ID string

var Native = ID(NativeID)

func New(code, issuer string) (ID, error) {
	if err := validateCode(code); err != nil {
		return "", err
	}
	if issuer == "" {
		return "", fmt.Errorf("%w: empty issuer for code %q", ErrInvalidAsset, code)
	}
	if strings.Contains(issuer, ":") {
		return "", fmt.Errorf("%w: issuer %q contains a separator", ErrInvalidAsset, issuer)
	}

	return ID(code + ":" + issuer), nil
}

func MustNew(code, issuer string) ID {
	id, err := New(code, issuer)
	if err != nil {
		panic(err)
	}
	return id
}

// Parse accepts either `native` or `CODE:ISSUER`.
func Parse(input string) (ID, error) {
	if input == NativeID {
		return Native, nil
	}

	code, issuer, found := strings.Cut(input, ":")
	if !found {
		return "", fmt.Errorf("%w: %q is neither %q nor CODE:ISSUER", ErrInvalidAsset, input, NativeID)
	}

	return New(code, issuer)
}

func MustParse(input string) ID {
	id, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return id
}

func ParseList(inputs []string) (out []ID, err error) {
	for _, input := range inputs {
		id, err := Parse(input)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (i ID) IsNative() bool {
	return i == Native
}

func (i ID) Code() string {
	if i.IsNative() {
		return ""
	}
	code, _, _ := strings.Cut(string(i), ":")
	return code
}

func (i ID) Issuer() string {
	if i.IsNative() {
		return ""
	}
	_, issuer, _ := strings.Cut(string(i), ":")
	return issuer
}

func (i ID) String() string {
	return string(i)
}

func (i ID) ZapField(key string) zap.Field {
	return zap.String(key, string(i))
}

func validateCode(code string) error {
	if len(code) == 0 || len(code) > maxCodeLength {
		return fmt.Errorf("%w: code %q must be between 1 and %d characters", ErrInvalidAsset, code, maxCodeLength)
	}

	for _, r := range code {
		isAlphaNum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlphaNum {
			return fmt.Errorf("%w: code %q contains non alphanumeric character %q", ErrInvalidAsset, code, r)
		}
	}
	return nil
}
