package tags

// Rule maps a keyword set to a display tag. Keywords match as lower-case
// substrings of the task text.
type Rule struct {
	Keywords []string
	Label    string
	Color    string
}

// rules is the fixed process-wide smart tag table. Order is part of the
// contract: matched tags come out in table order.
var rules = []Rule{
	{Keywords: []string{"gỗ", "ván", "mdf", "melamine", "laminat"}, Label: "Gỗ", Color: "bg-orange-100 text-orange-700"},
	{Keywords: []string{"sắt", "inox", "thép", "hàn", "kim loại"}, Label: "Kim loại", Color: "bg-slate-200 text-slate-700"},
	{Keywords: []string{"sơn", "phủ", "pu", "tĩnh điện"}, Label: "Sơn", Color: "bg-pink-100 text-pink-700"},
	{Keywords: []string{"kính", "gương", "thủy"}, Label: "Kính", Color: "bg-sky-100 text-sky-700"},
	{Keywords: []string{"đá", "granite", "marble"}, Label: "Đá", Color: "bg-stone-200 text-stone-700"},
	{Keywords: []string{"điện", "led", "nguồn"}, Label: "Điện", Color: "bg-yellow-100 text-yellow-700"},
	{Keywords: []string{"lắp", "ráp", "đặt"}, Label: "Lắp đặt", Color: "bg-lime-100 text-lime-700"},
}

// Rules exposes a copy of the table for listing endpoints.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
