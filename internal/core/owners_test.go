package core

import "testing"

func TestResizeContributions(t *testing.T) {
	base := []Contribution{
		{ID: "1", Name: "Kari", Amount: 100},
		{ID: "2", Name: "Ola", Amount: 200},
	}

	t.Run("grow appends defaults", func(t *testing.T) {
		got := ResizeContributions(base, 4)
		if len(got) != 4 {
			t.Fatalf("expected 4 owners, got %d", len(got))
		}
		if got[0] != base[0] || got[1] != base[1] {
			t.Fatalf("existing owners changed: %+v", got[:2])
		}
		if got[3].ID != "4" || got[3].Name != "Person 4" || got[3].Amount != 0 {
			t.Fatalf("unexpected default owner: %+v", got[3])
		}
	})

	t.Run("shrink truncates", func(t *testing.T) {
		got := ResizeContributions(base, 1)
		if len(got) != 1 || got[0] != base[0] {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("never below one", func(t *testing.T) {
		got := ResizeContributions(nil, 0)
		if len(got) != 1 || got[0].Name != "Person 1" {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("input untouched", func(t *testing.T) {
		in := []Contribution{{ID: "1", Amount: 1}}
		out := ResizeContributions(in, 1)
		out[0].Amount = 99
		if in[0].Amount != 1 {
			t.Fatalf("input was modified")
		}
	})
}

func TestEqualContributions(t *testing.T) {
	got := EqualContributions(400000, 4)
	for _, c := range got {
		if c.Amount != 100000 {
			t.Fatalf("expected 100000 each, got %+v", got)
		}
	}
}
