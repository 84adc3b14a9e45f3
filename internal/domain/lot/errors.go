package lot

import "errors"

var (
	ErrUnauthorized    = errors.New("caller lacks required role")
	ErrNotFound        = errors.New("lot not found")
	ErrInvalidState    = errors.New("operation not valid for current lot state")
	ErrAlreadyAnalyzed = errors.New("lab report already registered for lot")
	ErrAlreadyBlocked  = errors.New("lot is already blocked")
	ErrInvalidInput    = errors.New("invalid input")
)
