package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/mikey/textguard/internal/core"
)

// ErrNotEnoughSamples is returned when a split would leave a side empty
var ErrNotEnoughSamples = errors.New("not enough samples to split")

// Split shuffles messages with a seeded source and holds out
// ceil(testSize*n) of them for testing. The same seed and input always
// produce the same partition.
func Split(messages []core.LabeledMessage, testSize float64, seed int64) (train, test []core.LabeledMessage, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}
	n := len(messages)
	if n < 2 {
		return nil, nil, ErrNotEnoughSamples
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	test = make([]core.LabeledMessage, 0, nTest)
	for _, idx := range perm[:nTest] {
		test = append(test, messages[idx])
	}
	train = make([]core.LabeledMessage, 0, n-nTest)
	for _, idx := range perm[nTest:] {
		train = append(train, messages[idx])
	}

	return train, test, nil
}
