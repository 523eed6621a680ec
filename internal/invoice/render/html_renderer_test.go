package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	html, err := NewRenderer().RenderHTML(View{
		Number:       "INV-202406-0001",
		Status:       "UNPAID",
		CustomerName: "Ana <script>",
		Items: []ItemView{
			{Description: "Refill", Quantity: FormatQuantity(2), UnitPrice: "$10.00", Amount: "$20.00"},
		},
		Subtotal:     "$20.00",
		TaxLabel:     "Tax (9%)",
		Tax:          "$1.80",
		Total:        "$21.80",
		PrimaryColor: "red; background: url(x)",
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "INV-202406-0001")
	assert.Contains(t, out, "$21.80")
	assert.Contains(t, out, "Ana &lt;script&gt;")
	assert.Contains(t, out, "#111827")
	assert.NotContains(t, out, "url(x)")
}
