package specialties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	cardiology, ok := c.Discipline("cardiology")
	require.True(t, ok)
	assert.True(t, cardiology.Matches("Cardiovascular Disease (Cardiology)"))
	assert.False(t, cardiology.Matches("DERMATOLOGY"))

	ent, ok := c.Discipline("otolaryngology")
	require.True(t, ok)
	assert.Contains(t, ent.Aliases, "EAR, NOSE AND THROAT")
}

func TestIsPediatricOnly(t *testing.T) {
	c := Default()
	assert.True(t, c.IsPediatricOnly("PEDIATRICS"))
	assert.True(t, c.IsPediatricOnly(" pediatric medicine "))
	assert.False(t, c.IsPediatricOnly("FAMILY PRACTICE"))
	assert.False(t, c.IsPediatricOnly("INTERNAL MEDICINE"))
}

func TestAllowedForMinor_AgeDominatesSymptom(t *testing.T) {
	c := Default()
	base := keys(c.AllowedForMinor(""))
	assert.Equal(t, []string{"pediatrics", "family_practice"}, base)

	for _, symptoms := range []string{"sore throat", "my ear hurts", "high fever", "broken arm"} {
		assert.Equal(t, base, keys(c.AllowedForMinor(symptoms)), symptoms)
	}
}

func TestMatchingSymptomGroups(t *testing.T) {
	c := Default()

	groups := c.MatchingSymptomGroups("Chest pain and an itchy rash")
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"cardiac", "skin"}, names)

	assert.Empty(t, c.MatchingSymptomGroups(""))
	assert.Empty(t, c.MatchingSymptomGroups("a general question"))

	inside := c.MatchingSymptomGroups("hearing loss")
	require.Len(t, inside, 1)
	assert.Equal(t, "ent", inside[0].Name)
}

func TestMentionsAny(t *testing.T) {
	assert.True(t, MentionsAny("rashes on both arms", []string{"rash"}))
	assert.True(t, MentionsAny("Sore THROAT", []string{"throat"}))
	assert.True(t, MentionsAny("hearing loss", []string{"ear"}))
	assert.True(t, MentionsAny("lower backbone pain", []string{"bone"}))
	assert.False(t, MentionsAny("sore knee", []string{"ear", "throat"}))
	assert.False(t, MentionsAny("   ", []string{"ear"}))
	assert.False(t, MentionsAny("anything", []string{""}))
}

func TestMatchesTarget(t *testing.T) {
	assert.True(t, MatchesTarget("CARDIOVASCULAR DISEASE (CARDIOLOGY)", "cardiology"))
	assert.True(t, MatchesTarget("CARDIOLOGY", "INTERVENTIONAL CARDIOLOGY"))
	assert.False(t, MatchesTarget("DERMATOLOGY", "CARDIOLOGY"))
	assert.False(t, MatchesTarget("CARDIOLOGY", ""))
}

func TestParse_RejectsUnknownDisciplineReference(t *testing.T) {
	_, err := Parse([]byte(`
disciplines:
  - key: pediatrics
    aliases: [PEDIATRICS]
child_allow_list: [pediatrics, dentistry]
`))
	assert.Error(t, err)

	_, err = Parse([]byte("disciplines: [{key: x}]"))
	assert.Error(t, err)
}

func keys(ds []Discipline) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Key)
	}
	return out
}
