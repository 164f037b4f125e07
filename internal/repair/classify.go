// Package repair rewrites products whose category pair no longer passes the
// taxonomy. Inference from product names is heuristic and only meant for
// cleaning historical data.
package repair

import (
	"strings"
	"unicode"
)

// Correction is an inferred category label and subcategory. Labels are
// normalized against the taxonomy before they are written.
type Correction struct {
	Category    string
	SubCategory string
}

// Classifier infers a corrected pair or returns nil when it has no opinion.
type Classifier func(name, currentCategory, currentSubCategory string) *Correction

// subRule picks a subcategory from whole words in the name. Hints are only
// consulted once no rule's words matched.
type subRule struct {
	sub   string
	words []string
	hints []string
}

type categoryRule struct {
	category string
	// aliases are legacy category labels that mean this category. A non-empty
	// implied sub is used as the subcategory.
	aliases  map[string]string
	keywords []string
	subs     []subRule
	fallback string
}

var rules = []categoryRule{
	{
		category: "Clothing",
		aliases: map[string]string{
			"clothing": "", "clothes": "", "fashion": "", "apparel": "",
			"men": "Men", "women": "Women", "kids": "Kids",
		},
		keywords: []string{"shirt", "jeans", "dress", "top", "blouse", "hoodie", "jacket", "sweater", "skirt", "trouser", "pant"},
		subs: []subRule{
			{"Women", []string{"women", "women's", "womens", "ladies"}, []string{"floral", "elegant"}},
			{"Men", []string{"men", "men's", "mens"}, []string{"formal"}},
			{"Kids", []string{"kids", "kid", "kid's", "children", "boys", "girls"}, []string{"cartoon", "colorful"}},
		},
		fallback: "Men",
	},
	{
		category: "Electronics",
		aliases:  map[string]string{"electronics": "", "electronic": "", "gadgets": ""},
		keywords: []string{"smartphone", "phone", "laptop", "computer", "notebook", "headphone", "earbud", "speaker", "tablet"},
		subs: []subRule{
			{"Mobile", []string{"smartphone", "phone", "mobile", "tablet"}, nil},
			{"Laptop", []string{"laptop", "computer", "notebook"}, nil},
			{"Audio", []string{"headphone", "earbud", "speaker", "audio"}, nil},
		},
		fallback: "Mobile",
	},
	{
		category: "Books",
		aliases:  map[string]string{"books": "", "book": ""},
		keywords: []string{"book", "novel", "textbook", "paperback", "hardcover"},
		subs: []subRule{
			{"Educational", []string{"textbook", "guide", "workbook", "learn"}, nil},
			{"Non-Fiction", []string{"biography", "history", "memoir", "cookbook"}, nil},
		},
		fallback: "Fiction",
	},
	{
		category: "Home",
		aliases:  map[string]string{"home": "", "home & kitchen": "", "kitchen": "Kitchen", "furniture": "Furniture", "decor": "Decor"},
		keywords: []string{"lamp", "vase", "sofa", "chair", "table", "cookware", "pan", "knife", "cushion", "rug"},
		subs: []subRule{
			{"Kitchen", []string{"cookware", "pan", "knife", "kitchen", "mug"}, nil},
			{"Furniture", []string{"sofa", "chair", "table", "shelf", "bed"}, nil},
		},
		fallback: "Decor",
	},
	{
		category: "Sports",
		aliases:  map[string]string{"sports": "", "sport": "", "fitness": "Fitness"},
		keywords: []string{"dumbbell", "yoga", "treadmill", "tent", "football", "basketball", "racket", "bicycle"},
		subs: []subRule{
			{"Outdoor", []string{"tent", "camping", "hiking", "bicycle"}, nil},
			{"Team Sports", []string{"football", "basketball", "soccer", "cricket", "volleyball"}, nil},
		},
		fallback: "Fitness",
	},
	{
		category: "Beauty",
		aliases:  map[string]string{"beauty": "", "cosmetics": "", "makeup": "Makeup", "skincare": "Skincare"},
		keywords: []string{"lipstick", "mascara", "shampoo", "conditioner", "serum", "moisturizer", "perfume", "cleanser"},
		subs: []subRule{
			{"Makeup", []string{"lipstick", "mascara", "foundation", "eyeliner"}, nil},
			{"Haircare", []string{"shampoo", "conditioner", "hair"}, nil},
		},
		fallback: "Skincare",
	},
	{
		category: "Toys",
		aliases:  map[string]string{"toys": "", "toy": "", "games": "Board Games"},
		keywords: []string{"toy", "puzzle", "lego", "doll", "blocks", "figure"},
		subs: []subRule{
			{"Action", []string{"figure", "action", "blaster"}, nil},
			{"Board Games", []string{"board", "chess", "monopoly", "cards"}, nil},
		},
		fallback: "Educational",
	},
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// hasWord matches whole words, allowing a plural "s" or "es".
func hasWord(ws []string, candidates ...string) bool {
	for _, w := range ws {
		for _, c := range candidates {
			if w == c || w == c+"s" || w == c+"es" {
				return true
			}
		}
	}
	return false
}

// InferCategory is the default Classifier. The current category label wins
// when it names a known category; otherwise keywords in the product name
// decide. The subcategory comes from the label, then the current value when it
// already fits, then the name, then a fixed fallback.
func InferCategory(name, currentCategory, currentSubCategory string) *Correction {
	label := strings.ToLower(strings.Join(strings.Fields(currentCategory), " "))
	ws := words(name)

	var rule *categoryRule
	implied := ""
	for i := range rules {
		if sub, ok := rules[i].aliases[label]; ok {
			rule, implied = &rules[i], sub
			break
		}
	}
	if rule == nil {
		for i := range rules {
			if hasWord(ws, rules[i].keywords...) {
				rule = &rules[i]
				break
			}
		}
	}
	if rule == nil {
		return nil
	}

	return &Correction{Category: rule.category, SubCategory: pickSub(rule, implied, ws, currentSubCategory)}
}

func pickSub(rule *categoryRule, implied string, ws []string, current string) string {
	if implied != "" {
		return implied
	}
	current = strings.TrimSpace(current)
	for _, s := range rule.subs {
		if strings.EqualFold(s.sub, current) {
			return s.sub
		}
	}
	if strings.EqualFold(rule.fallback, current) {
		return rule.fallback
	}
	for _, s := range rule.subs {
		if hasWord(ws, s.words...) {
			return s.sub
		}
	}
	for _, s := range rule.subs {
		if hasWord(ws, s.hints...) {
			return s.sub
		}
	}
	return rule.fallback
}
