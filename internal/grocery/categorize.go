// Package grocery guesses a catalog category for a free-typed item name.
package grocery

import (
	"sort"
	"strings"
)

// Fallback is the category used when no keyword matches. It is one of the
// shared categories seeded by the migrations.
const Fallback = "Other"

// keywords lists, per shared category name, the words that identify it.
// Every keyword is tried as an exact name first and as a substring second.
var keywords = map[string][]string{
	"Produce": {
		"apple", "apples", "banana", "bananas", "orange", "oranges", "lemon", "lemons",
		"lime", "limes", "avocado", "avocados", "tomato", "tomatoes", "potato", "potatoes",
		"sweet potato", "onion", "onions", "green onion", "garlic", "ginger", "lettuce",
		"romaine", "arugula", "spinach", "baby spinach", "kale", "broccoli", "cauliflower",
		"cabbage", "carrot", "carrots", "celery", "cucumber", "cucumbers", "bell pepper",
		"mushroom", "mushrooms", "eggplant", "corn", "squash", "zucchini", "melon",
		"watermelon", "grapes", "berries", "strawberries", "blueberries", "salad mix",
		"herbs", "cilantro", "parsley", "fruit",
	},
	"Dairy": {
		"milk", "oat milk", "almond milk", "egg", "eggs", "butter", "cheese", "cream cheese",
		"cottage cheese", "yogurt", "greek yogurt", "cream", "sour cream", "heavy cream",
		"half and half",
	},
	"Meat & Seafood": {
		"chicken", "chicken breast", "chicken thigh", "chicken wing", "beef", "ground beef",
		"pork", "pork chop", "turkey", "ground turkey", "bacon", "sausage", "ham", "steak",
		"salmon", "shrimp", "tuna", "fish", "hot dog", "deli meat", "lamb", "crab", "lobster",
	},
	"Bakery": {
		"bread", "sourdough", "whole wheat", "bagel", "bagels", "tortilla", "tortillas",
		"roll", "rolls", "bun", "buns", "muffin", "muffins", "croissant", "pita",
	},
	"Pantry": {
		"rice", "pasta", "spaghetti", "noodle", "noodles", "flour", "sugar", "salt", "oil",
		"olive oil", "vinegar", "soy sauce", "hot sauce", "pasta sauce", "tomato sauce",
		"ketchup", "mustard", "mayonnaise", "honey", "peanut butter", "jam", "jelly",
		"maple syrup", "cereal", "oatmeal", "granola", "canned", "soup", "broth", "stock",
		"bean", "beans", "lentil", "lentils", "nuts", "almonds", "spice", "seasoning", "salsa",
	},
	"Frozen": {
		"frozen", "ice cream", "popsicle", "popsicles", "frozen pizza", "frozen waffles",
	},
	"Beverages": {
		"water", "sparkling water", "juice", "coffee", "tea", "soda", "beer", "wine",
		"kombucha", "lemonade",
	},
	"Snacks": {
		"chips", "crackers", "cookies", "popcorn", "pretzels", "granola bars", "trail mix",
		"candy", "chocolate",
	},
	"Household": {
		"paper towels", "toilet paper", "trash bags", "dish soap", "detergent", "sponges",
		"aluminum foil", "plastic wrap", "zip bags", "light bulbs", "batteries", "napkins",
		"cleaning spray", "bleach",
	},
	"Personal Care": {
		"shampoo", "conditioner", "soap", "body wash", "toothpaste", "toothbrush", "deodorant",
		"lotion", "sunscreen", "floss", "razors", "tissues", "band-aids",
	},
}

type keyword struct {
	word     string
	category string
}

var (
	exact      = map[string]string{}
	bySpecific []keyword
)

func init() {
	for category, words := range keywords {
		for _, w := range words {
			exact[w] = category
			bySpecific = append(bySpecific, keyword{word: w, category: category})
		}
	}
	// Longer keywords are more specific and win substring ties.
	sort.Slice(bySpecific, func(i, j int) bool {
		if len(bySpecific[i].word) != len(bySpecific[j].word) {
			return len(bySpecific[i].word) > len(bySpecific[j].word)
		}
		return bySpecific[i].word < bySpecific[j].word
	})
}

// Match returns the category for name and whether any keyword matched.
// Matching is case-insensitive: an exact keyword first, then the longest
// keyword contained in the name.
func Match(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	if c, ok := exact[n]; ok {
		return c, true
	}
	for _, k := range bySpecific {
		if strings.Contains(n, k.word) {
			return k.category, true
		}
	}
	return "", false
}

// Categorize is Match with the Fallback category for unknown names.
func Categorize(name string) string {
	if c, ok := Match(name); ok {
		return c
	}
	return Fallback
}

// Categories returns the category names the keyword table can produce, plus
// the fallback, sorted.
func Categories() []string {
	out := []string{Fallback}
	for c := range keywords {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
