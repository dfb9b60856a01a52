// Package classify maps free-text campaign and ad names onto reporting
// categories via ordered keyword matching. All classifiers are pure
// functions: no store access, same input always yields the same output.
//
// Match order is significant everywhere in this package. The tables are
// ordered slices, never maps, because the first matching entry wins and
// changing the order changes the classification.
package classify

import "strings"

// Channel labels.
const (
	ChannelFacebook  = "Facebook"
	ChannelInstagram = "Instagram"
	ChannelOther     = "Other"
)

// Objective labels derived from campaign names.
const (
	ObjectiveImpression = "Impression"
	ObjectiveVisit      = "Visit"
	ObjectiveMessage    = "Message"
	ObjectiveUnknown    = "Unknown"
)

// MixProduct is the fallback product line for ad names that match no
// product keyword, and for missing ad names.
const MixProduct = "Mix Product"

// channelRule is one (label, keyword variants) pair. Rules are evaluated
// in declaration order; Facebook is checked before Instagram so a name
// matching both resolves to Facebook.
type channelRule struct {
	label    string
	keywords []string
}

var channelRules = []channelRule{
	{ChannelFacebook, []string{"fb", "facebook"}},
	{ChannelInstagram, []string{"ig", "instagram"}},
}

// Channel classifies a campaign name into Facebook, Instagram or Other by
// case-insensitive substring match.
func Channel(campaignName string) string {
	name := strings.ToLower(campaignName)
	for _, rule := range channelRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.label
			}
		}
	}
	return ChannelOther
}

// objectiveRule pairs an objective label with its campaign-name marker.
type objectiveRule struct {
	label   string
	keyword string
}

var objectiveRules = []objectiveRule{
	{ObjectiveImpression, "impression"},
	{ObjectiveVisit, "visit"},
	{ObjectiveMessage, "mess"},
}

// Objective derives the campaign objective from its name. The marker
// checks run in fixed order (Impression, Visit, Mess); no match yields
// Unknown. The result is stored on the campaign dimension at creation and
// never recomputed.
func Objective(campaignName string) string {
	name := strings.ToLower(campaignName)
	for _, rule := range objectiveRules {
		if strings.Contains(name, rule.keyword) {
			return rule.label
		}
	}
	return ObjectiveUnknown
}

// Platform derives the serving platform stored on the campaign dimension:
// Instagram when the name carries an IG marker, Facebook otherwise.
func Platform(campaignName string) string {
	name := strings.ToLower(campaignName)
	if strings.Contains(name, "ig") || strings.Contains(name, "instagram") {
		return ChannelInstagram
	}
	return ChannelFacebook
}

// productRule is one (product line, keyword variants) pair, matched
// against the upper-cased ad name.
type productRule struct {
	name     string
	keywords []string
}

// productRules is the product-line keyword table for the Parfumelite
// catalogue. First match in declaration order wins.
var productRules = []productRule{
	{"DIRTY MILK", []string{"DIRTY MILK", "DIRTYMILK", "DTM"}},
	{"BLACK OUD", []string{"BLACK OUD", "BLACKOUD", "OUD"}},
	{"ROSE VELVET", []string{"ROSE VELVET", "ROSEVELVET", "RSV"}},
	{"SWEET DREAM", []string{"SWEET DREAM", "SWEETDREAM", "SWD"}},
	{"WHITE TEA", []string{"WHITE TEA", "WHITETEA", "WHT"}},
	{"AMBER NIGHT", []string{"AMBER NIGHT", "AMBERNIGHT", "AMN"}},
}

// ProductLine classifies an ad name into a product line. The name is
// upper-cased and tested against each rule's keyword variants in table
// order; no match (or an empty name) yields MixProduct.
func ProductLine(adName string) string {
	if adName == "" {
		return MixProduct
	}
	name := strings.ToUpper(adName)
	for _, rule := range productRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.name
			}
		}
	}
	return MixProduct
}

// Products returns the product lines in table order, without the
// MixProduct fallback.
func Products() []string {
	out := make([]string, len(productRules))
	for i, rule := range productRules {
		out[i] = rule.name
	}
	return out
}
