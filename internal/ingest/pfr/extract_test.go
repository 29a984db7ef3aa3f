package pfr

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extractFixture = `<html><body>
<table id="passing"><tbody>
<tr><th data-stat="player">Justin Herbert</th><td data-stat="pass_yds">1,300</td></tr>
</tbody></table>
<div id="all_kicking"><div class="placeholder"></div>
<!--
<div class="table_container"><table id="kicking"><thead><tr><th data-stat="player">Player</th></tr></thead><tbody>
<tr><th data-stat="player" csk="Dicker,Cameron">Cameron Dicker</th><td data-stat="fgm">12</td></tr>
<tr class="thead"><th data-stat="player">Player</th><td data-stat="fgm">FGM</td></tr>
<tr><th data-stat="player">Team Total</th><td data-stat="fgm">12</td><td>no stat name</td></tr>
</tbody></table></div>
-->
</div>
</body></html>`

func TestExtractTable_Visible(t *testing.T) {
	doc, err := ParseHTML([]byte(extractFixture))
	require.NoError(t, err)

	table, err := ExtractTable(doc, "missing", "passing")
	require.NoError(t, err)

	assert.Equal(t, "passing", table.ID)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Justin Herbert", table.Rows[0].Text("player"))
	assert.Equal(t, "1,300", table.Rows[0].Text("pass_yds"))
	assert.Equal(t, "", table.Rows[0].Text("absent"))
}

func TestExtractTable_InsideComment(t *testing.T) {
	doc, err := ParseHTML([]byte(extractFixture))
	require.NoError(t, err)

	table, err := ExtractTable(doc, "kicking")
	require.NoError(t, err)

	require.Len(t, table.Rows, 2, "repeated header rows are dropped")
	assert.Equal(t, Cell{Text: "Cameron Dicker", CSK: "Dicker,Cameron"}, table.Rows[0]["player"])
	assert.Len(t, table.Rows[1], 2, "cells without data-stat are ignored")
}

func TestExtractTable_NotFound(t *testing.T) {
	doc, err := ParseHTML([]byte(extractFixture))
	require.NoError(t, err)

	_, err = ExtractTable(doc, "team_stats", "defense")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}
