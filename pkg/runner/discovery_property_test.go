package runner

import (
	"context"
	"testing"

	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/testcase"
	"pgregory.net/rapid"
)

// Replays a fixed list of responses, failing the test if asked for more.
type scriptedTransport struct {
	t         *rapid.T
	responses []*protocol.WorkAssignment
	calls     int
}

func (s *scriptedTransport) Request(ctx context.Context, identity Identity) (*protocol.WorkAssignment, error) {
	if s.calls >= len(s.responses) {
		s.t.Fatalf("request %d after the final response", s.calls+1)
	}
	response := s.responses[s.calls]
	s.calls++
	return response, nil
}

func TestDiscoveryYieldsExactlyTheAssignedWork(t *testing.T) {
	classes := []string{"pkg.mod ClassName", "pkg.mod Other", "pkg.other Third", ""}
	methods := []string{"test_a", "test_b", "test_c"}

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 20).Draw(t, "count")

		responses := []*protocol.WorkAssignment{}
		expected := []*protocol.WorkAssignment{}
		for i := 0; i < count; i++ {
			a := &protocol.WorkAssignment{
				Class:   rapid.SampledFrom(classes).Draw(t, "class"),
				Methods: rapid.SliceOfDistinct(rapid.SampledFrom(methods), rapid.ID[string]).Draw(t, "methods"),
			}
			responses = append(responses, a)
			if a.HasWork() {
				expected = append(expected, a)
			}
		}

		last := &protocol.WorkAssignment{Finished: true}
		if rapid.Bool().Draw(t, "trailing") {
			last.Class = "pkg.mod ClassName"
			last.Methods = []string{"test_a"}
			expected = append(expected, last)
		}
		responses = append(responses, last)

		transport := &scriptedTransport{t: t, responses: responses}
		client, err := NewRunnerClient(testIdentity(), RetryConfig{}, WithTransport(transport), WithResolver(newTestRegistry()))
		if err != nil {
			t.Fatal(err)
		}

		stream := client.Discover()
		yielded := []*testcase.Unit{}
		for unit, err := range stream.All(context.Background()) {
			if err != nil {
				t.Fatal(err)
			}
			yielded = append(yielded, unit.(*testcase.Unit))
		}

		if len(yielded) != len(expected) {
			t.Fatalf("yielded %d units, expected %d", len(yielded), len(expected))
		}
		for i, unit := range yielded {
			if unit.Class.Path() != expected[i].Class {
				t.Fatalf("unit %d: class %s, expected %s", i, unit.Class.Path(), expected[i].Class)
			}
			if len(unit.Methods) != len(expected[i].Methods) {
				t.Fatalf("unit %d: methods %v, expected %v", i, unit.Methods, expected[i].Methods)
			}
			for j := range unit.Methods {
				if unit.Methods[j] != expected[i].Methods[j] {
					t.Fatalf("unit %d: methods %v, expected %v", i, unit.Methods, expected[i].Methods)
				}
			}
		}

		if transport.calls != len(responses) {
			t.Fatalf("made %d requests, expected %d", transport.calls, len(responses))
		}
	})
}
