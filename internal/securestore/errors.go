package securestore

import "errors"

var (
	// ErrNotInitialized is returned by Save and Load while no key is held,
	// i.e. the store is Locked or Uninitialized. It signals a caller bug.
	ErrNotInitialized = errors.New("secure store not initialized")

	// ErrVerificationFailed is the error form of a wrong passcode, returned
	// by Unlock. Verify reports the same condition as false.
	ErrVerificationFailed = errors.New("passcode verification failed")

	// ErrDecryptionFailed marks a persisted record that could not be
	// authenticated or decoded under the current key.
	ErrDecryptionFailed = errors.New("record decryption failed")

	ErrAlreadyConfigured = errors.New("passcode already configured")
	ErrInvalidPasscode   = errors.New("passcode must be 4 digits")
	ErrReservedKey       = errors.New("reserved storage key")
	ErrCorruptMetadata   = errors.New("corrupt passcode metadata")
)
