package net

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestDumpGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	n := identityApplied(t)
	g.Assert(t, "identity_applied", []byte(Dump(n)))

	n.Reduce()
	g.Assert(t, "identity_applied_reduced", []byte(Dump(n)))
}
