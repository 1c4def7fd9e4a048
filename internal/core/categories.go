package core

// DefaultCategories are the suggested categories per transaction type.
// Categories stay free-form; these only seed client pickers.
var DefaultCategories = map[TransactionType][]string{
	Income: {
		"Salary",
		"Freelance",
		"Investment",
		"Business",
		"Rental Income",
		"Dividends",
		"Bonus",
		"Gift",
		"Other Income",
	},
	Expense: {
		"Housing",
		"Food & Dining",
		"Transportation",
		"Entertainment",
		"Healthcare",
		"Shopping",
		"Utilities",
		"Insurance",
		"Education",
		"Travel",
		"Subscriptions",
		"Personal Care",
		"Gifts & Donations",
		"Other Expense",
	},
}
