package main

import "github.com/charmbracelet/lipgloss"

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	mutedGray  = lipgloss.Color("#6B7280")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	toolNameStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	descriptionStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	paramStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)
)
