package console

// Tokens recognised on any prompt (cancel) or on the first field of a form (end).
const (
	TokenCancel = "cancel"
	TokenEnd    = "end"
)

// User-facing messages.
const (
	MsgEnterDepartment = "Enter department information"
	MsgEnterStudent    = "Enter student information"
	MsgEnterCourse     = "Enter course information"
	MsgCancelHint      = "(Type 'cancel' at any time to reset this section)"
	MsgConfirm         = ">> Is the information above correct? (y/n):"
	MsgCancelled       = ">> Entry cancelled by user."
	MsgRetry           = ">> Reloading entry form..."
	MsgDeptMandatory   = ">> Department entry is mandatory. Resetting form..."

	ErrEmpty         = ">> ERROR: This field cannot be empty. Please try again."
	ErrInvalidText   = ">> ERROR: Invalid character! (You cannot use +, -, *, ? etc.).\n>> Please use only letters, numbers, and spaces."
	ErrInvalidID     = ">> ERROR: Student ID may contain only letters, digits and '-'."
	ErrInvalidWeb    = ">> ERROR: Invalid web address format!\n>> Please enter the address in the format 'www.duzce.edu.tr' or 'site.com'."
	ErrInvalidNumber = ">> ERROR: Invalid input! Please enter a numeric value."
	ErrNotPositive   = ">> ERROR: Value must be greater than zero."
	ErrDateFormat    = ">> ERROR: Invalid date format! Expected: 'dd.MM.yyyy' (e.g., 25.09.2000)."
	ErrFutureDate    = ">> ERROR: Date cannot be in the future."
	ErrInvalidGrade  = ">> ERROR: Invalid grade code. Please use the table (AA-FF)."
	ErrInvalidAnswer = ">> ERROR: Please answer with 'y' or 'n'."
)
