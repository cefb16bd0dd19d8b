package fortress

import "errors"

var (
	// ErrNoAccount means no user record has been registered on this device.
	ErrNoAccount = errors.New("no account registered")
	// ErrAccountExists is returned when registering over an existing account without reset.
	ErrAccountExists = errors.New("an account is already registered")
	// ErrMissingCredentials is returned when a username or password is blank.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrInvalidCredentials covers both a wrong username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidPin covers both a wrong PIN and a corrupted wrapped key.
	ErrInvalidPin       = errors.New("invalid PIN")
	ErrInvalidPinFormat = errors.New("PIN must be numeric and of the configured length")
	ErrNoQuickAccess    = errors.New("quick access is not set up")

	// ErrDecryptionUnavailable means the stored notes could not be recovered with
	// an otherwise valid key. The vault stays open but empty and refuses to save.
	ErrDecryptionUnavailable = errors.New("stored notes cannot be decrypted")

	// ErrExternalService wraps failures of the transcription/autocomplete service.
	ErrExternalService = errors.New("assistant service failure")

	ErrLocked            = errors.New("vault is locked")
	ErrNoteNotFound      = errors.New("note not found")
	ErrEmptyNote         = errors.New("note has no title, content or audio")
	ErrInvalidTransition = errors.New("invalid note state transition")

	// ErrVersionConflict means the stored notes changed since they were loaded.
	ErrVersionConflict = errors.New("stored notes were modified by another process")
)
