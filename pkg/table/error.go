package table

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// errors reported to the originating player. None of them mutate table state.
var (
	ErrNoGameInProgress   = UserError("no game in progress")
	ErrNotYourTurn        = UserError("it's not your turn")
	ErrInvalidRaiseAmount = UserError("invalid raise amount")
	ErrUnknownAction      = UserError("unknown action")
	ErrSeatTaken          = UserError("seat is already taken")
	ErrAlreadySeated      = UserError("you are already seated")
	ErrGameInProgress     = UserError("cannot change seats while a game is in progress")
)
