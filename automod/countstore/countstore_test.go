package countstore

import (
	"testing"
)

func TestMemInfractionStoreBasics(t *testing.T) {
	BehaviorTest(t, NewMemInfractionStore())
}

func TestRedisInfractionStoreBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")

	is, err := NewRedisInfractionStore("redis://localhost:6379/0", 0)
	if err != nil {
		t.Fatal(err)
	}
	BehaviorTest(t, is)
}
