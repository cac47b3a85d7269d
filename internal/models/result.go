package models

// ResultCode classifies the outcome of register and login.
type ResultCode string

const (
	CodeOK                ResultCode = "ok"
	CodeBonusGranted      ResultCode = "bonus_granted"
	CodeDuplicateUsername ResultCode = "duplicate_username"
	CodeBadCredentials    ResultCode = "bad_credentials"
)

// Result carries an expected business outcome. Rejections such as a taken
// username or a wrong password are Results, not errors.
type Result struct {
	Success bool
	Code    ResultCode
	Message string
}
