// Package charts renders the five exploratory price charts of a cleaned
// laptop table with gonum/plot: the price histogram with its density curve,
// price by type, the screen size trend, and mean price by RAM and by brand.
//
// Charts are written to Options.Dir as <id>.<format>. The renderer only
// reads the table, so RenderAll may draw several charts at once.
package charts
