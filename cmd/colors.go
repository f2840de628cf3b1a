package cmd

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	colorPass = color.New(color.FgGreen).SprintFunc()
	colorWarn = color.New(color.FgYellow).SprintFunc()
	colorFail = color.New(color.FgRed).SprintFunc()
	colorInfo = color.New(color.FgCyan).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToUpper(status) {
	case "PASS":
		return colorPass(status)
	case "WARN":
		return colorWarn(status)
	case "FAIL":
		return colorFail(status)
	case "INFO":
		return colorInfo(status)
	default:
		return status
	}
}

// formatScoreWithColor grades the 0-100 posture score for terminal output.
func formatScoreWithColor(score int) string {
	s := strconv.Itoa(score)
	switch {
	case score >= 90:
		return colorPass(s)
	case score >= 70:
		return colorWarn(s)
	default:
		return colorFail(s)
	}
}
