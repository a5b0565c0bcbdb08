package models

const (
	StatusPending = "pending"
)

const (
	ActionRegister = "REGISTER"
	ActionLogin    = "LOGIN"
	ActionLogout   = "LOGOUT"
	ActionBookTour = "BOOK_TOUR"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)
