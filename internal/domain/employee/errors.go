package employee

import "errors"

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrEmployeeCodeExists     = errors.New("employee code already exists")
	ErrInvalidEmployeeCode    = errors.New("invalid employee code format")
	ErrInvalidContractType    = errors.New("contract type must be full-time or part-time")
	ErrInvalidStatus          = errors.New("status must be active, on_leave or inactive")
	ErrPasswordTooShort       = errors.New("password must be at least 6 characters")
	ErrCannotDeleteSelf       = errors.New("cannot delete your own employee record")
	ErrCannotChangeOwnRole    = errors.New("cannot change your own role")
	ErrDeviceAlreadyBound     = errors.New("a different device is already bound to this employee")
	ErrEmployeeNotActive      = errors.New("employee is not active")
	ErrHRCannotGrantAdmin     = errors.New("only an admin can grant the admin role")
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")
)
