package paperlayout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlock_ClaimOnlyUpgrades(t *testing.T) {
	var b Block

	require.True(t, b.Claim(RoleText, stageText, "body typography"))
	require.True(t, b.Claim(RoleTable, stageTable, "inside table"))
	require.False(t, b.Claim(RoleHeader, stageText, "header predicate"))
	require.False(t, b.Claim(RoleTable, stageTable, "again"))

	require.Equal(t, RoleTable, b.Role())
	require.Equal(t, []RoleChange{
		{From: RoleUnclassified, To: RoleText, Stage: stageText, Reason: "body typography"},
		{From: RoleText, To: RoleTable, Stage: stageTable, Reason: "inside table"},
	}, b.History)
}

func TestBlock_ReleaseRestoresPreviousRole(t *testing.T) {
	var b Block
	b.Claim(RoleText, stageText, "body typography")
	b.Claim(RoleImage, stageImage, "figure caption")

	require.False(t, b.Release(RoleTable, stageTable, "not held"))
	require.True(t, b.Release(RoleImage, stageImage, "caption has 3 sentences"))
	require.Equal(t, RoleText, b.Role())

	last := b.History[len(b.History)-1]
	require.Equal(t, RoleImage, last.From)
	require.Equal(t, RoleText, last.To)
}

func TestBlock_ReleaseWithoutPriorRole(t *testing.T) {
	var b Block
	b.Claim(RoleImage, stageImage, "figure caption")
	require.True(t, b.Release(RoleImage, stageImage, "released"))
	require.Equal(t, RoleUnclassified, b.Role())
}

func TestRole_String(t *testing.T) {
	require.Equal(t, "recurring", RoleRecurring.String())
	require.Equal(t, "unclassified", RoleUnclassified.String())
	require.Equal(t, "invalid", Role(42).String())

	text, err := RoleMeta.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "meta", string(text))
}

func TestRole_Precedence(t *testing.T) {
	order := []Role{RoleUnclassified, RoleText, RoleHeader, RoleMeta, RoleImage, RoleTable, RoleRecurring}
	for i := 1; i < len(order); i++ {
		require.Equal(t, order[i], resolveRole(order[i-1], order[i]))
		require.Equal(t, order[i], resolveRole(order[i], order[i-1]))
	}
}
