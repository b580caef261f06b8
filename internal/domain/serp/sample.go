package serp

import "time"

// SampleResponse returns the bundled result set served by the sample resource
// and by offline mode. The data is a fixed snapshot so callers can exercise
// the full pipeline without provider credentials.
func SampleResponse() *Response {
	return &Response{
		Query:    "best running shoes",
		Location: "2840",
		Language: "en",
		Live:     false,
		// Snapshot date of the bundled fixture, not the serving time.
		FetchedAt: time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC),
		Entries: []Entry{
			{
				Position: 1,
				Title:    "The 10 Best Running Shoes of 2024, Tested by Runners",
				Snippet:  "We logged hundreds of miles in this year's top trainers to find the best options for every distance and budget.",
				URL:      "https://www.runnersworld.com/gear/best-running-shoes",
			},
			{
				Position: 2,
				Title:    "Best Running Shoes 2024",
				Snippet:  "Our experts ranked this year's top running shoes for road, trail and racing after months of testing.",
				URL:      "https://www.wired.com/gallery/best-running-shoes",
			},
			{
				Position: 3,
				Title:    "Running Shoes | Nike Official Store",
				Snippet:  "Shop the latest running shoes with responsive cushioning and secure fit. Free shipping and returns.",
				URL:      "https://www.nike.com/running/shoes",
			},
			{
				Position: 4,
				Title:    "How to Choose Running Shoes: Expert Advice",
				Snippet:  "Fit, cushioning and drop explained. Learn what actually matters when picking your next pair.",
				URL:      "https://www.rei.com/learn/expert-advice/running-shoes.html",
			},
			{
				Position: 5,
				Title:    "Best Running Shoes 2024",
				Snippet:  "From daily trainers to carbon racers, these are the shoes our test team recommends right now.",
				URL:      "https://www.tomsguide.com/best-picks/best-running-shoes",
			},
			{
				Position: 6,
				Title:    "7 Best Running Shoes for Beginners - Complete Guide",
				Snippet:  "New to running? These forgiving, durable trainers make the first miles easier on your legs.",
				URL:      "https://www.fleetfeet.com/how-to-choose-running-shoes",
			},
			{
				Position: 7,
				Title:    "What running shoes do you actually recommend?",
				Snippet:  "Discussion thread with hundreds of runner reviews covering stability, stack height and durability.",
				URL:      "https://www.reddit.com/r/running/comments/shoe_recs",
			},
			{
				Position: 8,
				Title:    "Brooks Running Shoes - Official Site",
				Snippet:  "Find your perfect ride with our shoe finder. Engineered for every runner and every run.",
				URL:      "https://www.brooksrunning.com/en_us/shoes",
			},
			{
				Position: 9,
				Title:    "The Ultimate Running Shoe Review: 25 Pairs Compared",
				Snippet:  "Side-by-side lab data and road testing for this season's most popular trainers.",
				URL:      "https://www.roadtrailrun.com/ultimate-running-shoe-review",
			},
			{
				Position: 10,
				Title:    "Running Shoes: Top Rated Trainers & Racers",
				Snippet:  "Browse top rated running shoes with customer reviews, size guides and fast delivery.",
				URL:      "https://www.roadrunnersports.com/category/mens/shoes",
			},
		},
		PeopleAlsoAsk: []string{
			"What is the best running shoe right now?",
			"How often should I replace running shoes?",
			"Are expensive running shoes worth it?",
			"What running shoes do podiatrists recommend?",
		},
	}
}
