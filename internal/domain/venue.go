package domain

import (
	"time"

	"github.com/tablehub/reservation-service/pkg/types"
)

// TableType is the seat count of a table. Only a fixed set of sizes exists.
type TableType int

const (
	TableTypeTwo   TableType = 2
	TableTypeThree TableType = 3
	TableTypeFour  TableType = 4
	TableTypeSix   TableType = 6
	TableTypeEight TableType = 8
)

// TableTypes all valid table types in ascending seat order
var TableTypes = []TableType{
	TableTypeTwo,
	TableTypeThree,
	TableTypeFour,
	TableTypeSix,
	TableTypeEight,
}

// IsValid returns true if the table type is a known seat count
func (t TableType) IsValid() bool {
	switch t {
	case TableTypeTwo, TableTypeThree, TableTypeFour, TableTypeSix, TableTypeEight:
		return true
	default:
		return false
	}
}

// Seats returns the number of seats at this table type
func (t TableType) Seats() int {
	return int(t)
}

// Fits returns true if partySize fits at this table type
func (t TableType) Fits(partySize int) bool {
	return partySize > 0 && partySize <= int(t)
}

// TableTypeQuantity how many tables of a given type a venue has
type TableTypeQuantity struct {
	TableType TableType
	Quantity  int
}

// Venue represents a restaurant on the platform
type Venue struct {
	ID      int64
	Name    string
	Address string
	Cuisine string

	OpenTime  types.TimeString
	CloseTime types.TimeString

	Tables []TableTypeQuantity

	// Users with venue manager rights
	ManagerIDs []int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableQuantity returns how many tables of the given type the venue has
func (v *Venue) TableQuantity(t TableType) int {
	for _, tq := range v.Tables {
		if tq.TableType == t {
			return tq.Quantity
		}
	}
	return 0
}

// IsManager returns true if userID manages this venue
func (v *Venue) IsManager(userID int64) bool {
	for _, id := range v.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
