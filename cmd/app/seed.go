package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"examloop-backend/internal/db"
	"examloop-backend/internal/model"
	"examloop-backend/utilities"
)

var starterQuestions = []model.Question{
	{
		Title:        "Describe a technological change",
		Body:         "Describe a recent technological change and discuss how it has affected daily life in your country. Give reasons and examples from your own experience.",
		Type:         "essay",
		Year:         2024,
	},
	{
		Title:        "Urbanisation pressures",
		Body:         "Many large cities struggle with housing shortages and congestion. What are the main causes, and what measures could governments take to address them?",
		Type:         "essay",
		Year:         2024,
	},
	{
		Title:        "Remote work tradeoffs",
		Body:         "Working from home has become common. Summarise the advantages and disadvantages for employees and employers, and state your own position.",
		Type:         "essay",
		Year:         2025,
	},
	{
		Title:        "Public funding for the arts",
		Body:         "Some people believe public money should prioritise science over the arts. To what extent do you agree or disagree?",
		Type:         "opinion",
		Year:         2025,
	},
}

// seedQuestions inserts the starter question bank when the table is empty.
// On an interactive terminal it asks first, since INITIALIZE may be left on
// by accident against a database that matters.
func seedQuestions() {
	var count int64
	db.GetDB().Model(&model.Question{}).Count(&count)
	if count > 0 {
		utilities.Info("question bank already has %d entries, skipping seed", count)
		return
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Seed starter question bank? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y") {
			utilities.Info("seed declined")
			return
		}
	}

	for i := range starterQuestions {
		if err := db.GetDB().Create(&starterQuestions[i]).Error; err != nil {
			utilities.Error("failed to seed question %q: %v", starterQuestions[i].Title, err)
			return
		}
	}
	utilities.Info("seeded %d questions", len(starterQuestions))
}
