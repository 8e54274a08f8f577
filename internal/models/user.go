package models

// UserType is carried in the bearer token's userType claim.
type UserType string

const (
	UserTypeTraveler UserType = "traveler"
	UserTypeDriver   UserType = "driver"
)
