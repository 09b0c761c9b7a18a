package college

import "time"

const DefaultCountry = "India"

type College struct {
	ID              int
	Name            string
	Code            *string
	Description     *string
	Email           *string
	Phone           *string
	Website         *string
	City            *string
	State           *string
	Country         *string
	IsActive        bool
	EstablishedYear *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CreateCollegeInput struct {
	Name            string
	Code            *string
	Description     *string
	Email           *string
	Phone           *string
	Website         *string
	City            *string
	State           *string
	Country         *string
	EstablishedYear *int
}

// UpdateCollegeInput carries only the fields the caller supplied.
type UpdateCollegeInput struct {
	Name            *string
	Code            *string
	Description     *string
	Email           *string
	Phone           *string
	Website         *string
	City            *string
	State           *string
	Country         *string
	EstablishedYear *int
	IsActive        *bool
}

func (in UpdateCollegeInput) IsEmpty() bool {
	return in.Name == nil && in.Code == nil && in.Description == nil && in.Email == nil &&
		in.Phone == nil && in.Website == nil && in.City == nil && in.State == nil &&
		in.Country == nil && in.EstablishedYear == nil && in.IsActive == nil
}
