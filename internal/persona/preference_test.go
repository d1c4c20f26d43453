package persona

import (
	"math"
	"testing"
)

func TestPreferenceScoreBounds(t *testing.T) {
	cases := []PreferenceInput{
		{},
		{
			Self:           Traits{Extraversion: 7, Agreeableness: 7, Neuroticism: 1},
			Partner:        Traits{Extraversion: 7, Agreeableness: 7, Neuroticism: 1},
			Familiarity:    7,
			Attractiveness: 7,
			SameGender:     true,
		},
		{
			Self:       Traits{Extraversion: 1, Agreeableness: 1, Neuroticism: 7},
			Partner:    Traits{Extraversion: 7, Agreeableness: 1, Neuroticism: 7},
			BadWeather: true,
		},
		// Out-of-range inputs are not validated; only the result is clamped.
		{
			Self:    Traits{Extraversion: -5, Agreeableness: 12, Neuroticism: 3},
			Partner: Traits{Extraversion: 9, Agreeableness: -2, Neuroticism: 40},
		},
	}
	for i, in := range cases {
		got := PreferenceScore(in)
		if got < 1 || got > 7 {
			t.Errorf("case %d: score %v outside [1,7]", i, got)
		}
		if math.Round(got*100)/100 != got {
			t.Errorf("case %d: score %v not rounded to 2 decimals", i, got)
		}
	}
}

func TestPreferenceScoreExactValue(t *testing.T) {
	in := PreferenceInput{
		Self:           Traits{Extraversion: 4, Agreeableness: 5, Neuroticism: 2},
		Partner:        Traits{Extraversion: 6, Agreeableness: 3, Neuroticism: 4},
		Familiarity:    2,
		Attractiveness: 5,
	}
	if got := PreferenceScore(in); got != 1.47 {
		t.Errorf("score = %v, want 1.47", got)
	}
}

func TestPreferenceScoreAsymmetric(t *testing.T) {
	a := Traits{Extraversion: 6, Agreeableness: 2, Neuroticism: 5}
	b := Traits{Extraversion: 3, Agreeableness: 6, Neuroticism: 1}
	in := PreferenceInput{Self: a, Partner: b, Familiarity: 4, Attractiveness: 6}
	swapped := in
	swapped.Self, swapped.Partner = b, a

	s1, s2 := PreferenceScore(in), PreferenceScore(swapped)
	if s1 == s2 {
		t.Fatalf("self/partner roles are not interchangeable; both scored %v", s1)
	}
}

func TestPreferenceContextTerms(t *testing.T) {
	base := PreferenceInput{
		Self:           Traits{Extraversion: 4, Agreeableness: 5, Neuroticism: 2},
		Partner:        Traits{Extraversion: 6, Agreeableness: 3, Neuroticism: 4},
		Familiarity:    3,
		Attractiveness: 5,
	}
	plain := PreferenceScore(base)

	sg := base
	sg.SameGender = true
	if PreferenceScore(sg) <= plain {
		t.Error("same-gender bonus should raise the score")
	}

	bw := base
	bw.BadWeather = true
	if PreferenceScore(bw) >= plain {
		t.Error("bad weather should lower the score")
	}
}
