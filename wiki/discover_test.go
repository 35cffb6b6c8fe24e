package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverLinks_LegendsGrid(t *testing.T) {
	doc := parseHTML(t, `<html><body>
<div class="character-grid">
  <a class="character-box-link" href="/wiki/Wraith">Wraith</a>
  <a class="character-box-link" href="/wiki/Pathfinder#Abilities">Pathfinder</a>
  <a class="character-box-link" href="/wiki/Wraith">Wraith again</a>
  <a class="character-box-link" href="/wiki/Category:Legends">category</a>
</div>
<div id="mw-content-text"><div class="div-col"><a href="/wiki/Unrelated">x</a></div></div>
</body></html>`)

	links := DiscoverLinks(doc, PageLegends)
	assert.Equal(t, []string{"Wraith", "Pathfinder"}, links)
}

func TestDiscoverLinks_WeaponsFirstColumn(t *testing.T) {
	doc := parseHTML(t, `<html><body>
<table class="wikitable sortable">
  <tr><th>Weapon</th><th>Ammo</th></tr>
  <tr><td><a href="/wiki/R-301_Carbine">R-301</a></td><td><a href="/wiki/Light_Rounds">Light</a></td></tr>
  <tr><td><a href="/wiki/Kraber_.50-Cal_Sniper">Kraber</a></td><td><a href="/wiki/Sniper_Ammo">Sniper</a></td></tr>
</table>
</body></html>`)

	links := DiscoverLinks(doc, PageWeapons)
	assert.Equal(t, []string{"R-301_Carbine", "Kraber_.50-Cal_Sniper"}, links)
}

func TestDiscoverLinks_GenericSelector(t *testing.T) {
	doc := parseHTML(t, `<html><body>
<div id="mw-content-text">
  <div class="div-col">
    <a href="/wiki/Season_20">Season 20</a>
    <a href="/wiki/Special:RecentChanges">special</a>
    <a href="/wiki/Season_21?action=edit">edit link</a>
    <a href="https://example.test/wiki/External">external</a>
  </div>
  <table class="wikitable"><tr><td><a href="/wiki/Season_19">Season 19</a></td></tr></table>
</div>
</body></html>`)

	links := DiscoverLinks(doc, "Seasons")
	assert.Equal(t, []string{"Season_20", "Season_19"}, links)
}

func TestDiscoverLinks_EmptyPage(t *testing.T) {
	doc := parseHTML(t, `<html><body><p>nothing to see</p></body></html>`)
	require.Empty(t, DiscoverLinks(doc, PageCosmetics))
}
