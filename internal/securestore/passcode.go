package securestore

// PasscodeLength is the number of digits in a device passcode.
const PasscodeLength = 4

// ValidatePasscode accepts exactly PasscodeLength ASCII digits.
func ValidatePasscode(passcode []byte) error {
	if len(passcode) != PasscodeLength {
		return ErrInvalidPasscode
	}
	for _, c := range passcode {
		if c < '0' || c > '9' {
			return ErrInvalidPasscode
		}
	}
	return nil
}
