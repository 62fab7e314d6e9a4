// Package inmemdb provides in-memory repositories with the same semantics
// as the SQL-backed ones. Used by tests and local prototyping only.
package inmemdb

import (
	"sync"

	"github.com/trezcool/upendo/core/billing"
	"github.com/trezcool/upendo/core/course"
	"github.com/trezcool/upendo/core/user"
)

type progressKey struct {
	userID         string
	module, lesson int
}

type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User // userID
	enrollments   map[string]*course.Enrollment
	subscriptions map[string]*course.Subscription
	progress      map[progressKey]*course.LessonProgress
	transactions  map[string]*billing.Transaction // transaction ID
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		enrollments:   make(map[string]*course.Enrollment),
		subscriptions: make(map[string]*course.Subscription),
		progress:      make(map[progressKey]*course.LessonProgress),
		transactions:  make(map[string]*billing.Transaction),
	}
}
