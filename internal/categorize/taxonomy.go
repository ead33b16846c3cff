// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package categorize

// Category is one taxonomy entry: a spending category and the keywords that
// select it. Keywords mix English and Nepali (Devanagari) vocabulary so the
// same scoring applies to both without branching.
type Category struct {
	Name     string
	Keywords []string
}

// taxonomy is declared in tie-break order: when two categories score the
// same, the earlier one wins.
var taxonomy = []Category{
	{
		Name: "Insurance",
		Keywords: []string{
			"insurance", "premium", "policy", "coverage", "health insurance",
			"auto insurance", "life insurance", "home insurance", "car insurance",
			"बीमा", "प्रीमियम", "पालिसी", "स्वास्थ्य बीमा", "जीवन बीमा",
		},
	},
	{
		Name: "Travel",
		Keywords: []string{
			"hotel", "flight", "airline", "booking", "reservation", "travel",
			"vacation", "trip", "lodging", "accommodation", "airport", "ticket",
			"होटल", "उडान", "एयरलाइन", "बुकिङ", "यात्रा", "टिकट",
		},
	},
	{
		Name: "Education",
		Keywords: []string{
			"tuition", "course", "class", "education", "school", "university",
			"college", "training", "workshop", "seminar", "textbook", "student",
			"शिक्षण", "कोर्स", "कक्षा", "शिक्षा", "स्कूल", "विश्वविद्यालय", "कलेज",
		},
	},
	{
		Name: "Healthcare",
		Keywords: []string{
			"medical", "doctor", "hospital", "pharmacy", "medicine", "healthcare",
			"dental", "clinic", "prescription", "treatment", "therapy", "health",
			"चिकित्सा", "डाक्टर", "अस्पताल", "फार्मेसी", "दवाई", "स्वास्थ्य",
		},
	},
	{
		Name: "Shopping",
		Keywords: []string{
			"clothing", "shoes", "accessories", "electronics", "appliances",
			"furniture", "jewelry", "cosmetics", "beauty", "fashion", "retail",
			"लुगा", "जुत्ता", "सामान", "इलेक्ट्रोनिक्स", "फर्निचर", "गहना",
		},
	},
	{
		Name: "Transportation",
		Keywords: []string{
			"gas", "fuel", "parking", "taxi", "uber", "lyft", "bus", "train",
			"subway", "metro", "transportation", "fare", "toll", "maintenance",
			"पेट्रोल", "डिजेल", "पार्किङ", "ट्याक्सी", "बस", "भाडा",
		},
	},
	{
		Name: "Food & Dining",
		Keywords: []string{
			"restaurant", "cafe", "dining", "food", "meal", "lunch", "dinner",
			"breakfast", "takeout", "delivery", "fast food", "pizza", "burger",
			"momo", "coffee",
			"रेस्टुरेन्ट", "क्याफे", "खाना", "भोजन", "दिनको खाना", "रातको खाना",
		},
	},
	{
		Name: "Groceries",
		Keywords: []string{
			"grocery", "supermarket", "market", "food store", "produce",
			"vegetables", "fruits", "meat", "dairy", "bread", "pantry",
			"milk", "eggs", "rice", "flour", "sugar",
			"किराना", "सुपरमार्केट", "बजार", "सब्जी", "फल", "मासु", "दूध",
		},
	},
	{
		Name: "Entertainment",
		Keywords: []string{
			"movie", "theater", "concert", "show", "game", "entertainment",
			"amusement", "park", "museum", "gallery", "sports", "fitness",
			"चलचित्र", "थिएटर", "कन्सर्ट", "खेल", "मनोरञ्जन", "फिटनेस",
		},
	},
	{
		Name: "Utilities",
		Keywords: []string{
			"electricity", "water", "gas", "internet", "phone", "cable",
			"utility", "bill", "service", "electric", "power", "heating",
			"बिजुली", "पानी", "ग्यास", "इन्टरनेट", "फोन", "बिल",
		},
	},
	{
		Name: "Banking & Finance",
		Keywords: []string{
			"bank", "atm", "withdrawal", "deposit", "loan", "credit",
			"debit", "transfer", "payment", "banking", "finance",
			"बैंक", "एटिएम", "निकासी", "जम्मा", "ऋण", "क्रेडिट",
		},
	},
	{
		Name: "Government Services",
		Keywords: []string{
			"government", "tax", "license", "permit", "registration",
			"passport", "citizenship", "voter", "election",
			"सरकार", "कर", "लाइसेन्स", "पासपोर्ट", "नागरिकता",
		},
	},
}
