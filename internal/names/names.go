// Package names generates random placeholder names for crediting
// anonymised voice-over takes and test footage.
package names

import (
	"errors"
	"math/rand"
)

var ErrInvalidCount = errors.New("count must be between 1 and 100")

const MaxCount = 100

var firstNames = []string{
	"Alice", "Bob", "Charlie", "Diana", "Ethan", "Fiona", "George", "Hannah",
	"Ivan", "Julia", "Kevin", "Laura", "Michael", "Nora", "Oliver", "Penelope",
	"Quinn", "Rachel", "Samuel", "Tina", "Ulysses", "Victoria", "William",
	"Xavier", "Yara", "Zackary", "Sophia", "Liam", "Olivia", "Noah", "Emma",
	"Ava", "Isabella", "Mia", "Charlotte", "Amelia", "Harper", "Evelyn", "Abigail",
	"Benjamin", "Chloe", "David", "Eleanor", "Frank", "Grace", "Henry", "Ivy",
	"Jack", "Katherine", "Leo", "Madison", "Nathan", "Piper", "Owen", "Ruby",
	"Sebastian", "Taylor", "Uma", "Vincent", "Willow", "Xenia", "Yusuf", "Zoe",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
	"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker",
	"Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Baker", "Nelson", "Carter", "Mitchell", "Roberts", "Phillips",
	"Campbell", "Parker", "Evans", "Edwards", "Collins", "Stewart", "Morris", "Rogers",
}

// Generate returns count random "First Last" names. The count is capped to
// keep a single request from being abused.
func Generate(count int) ([]string, error) {
	if count <= 0 || count > MaxCount {
		return nil, ErrInvalidCount
	}

	names := make([]string, count)
	for i := range names {
		first := firstNames[rand.Intn(len(firstNames))]
		last := lastNames[rand.Intn(len(lastNames))]
		names[i] = first + " " + last
	}
	return names, nil
}
