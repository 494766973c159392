package sim

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signalsfoundry/cellular-simulator/model"
	"github.com/signalsfoundry/cellular-simulator/tower"
)

// Report is the outcome of simulating one generation.
type Report struct {
	Generation model.Generation
	Profile    tower.Profile

	Antennas      int
	Capacity      int
	UsersAssigned int
	FirstChannel  []int

	OverheadPercent int
	CoresNeeded     int
	CoreMaxDevices  int
	MessageLoad     int

	// Users per channel slot across bands and antennas.
	LoadMean   float64
	LoadStdDev float64
}

const bannerRule = "================================================="

// RenderBanner writes the opening banner of a full run.
func RenderBanner(w io.Writer) error {
	return writeLines(w,
		bannerRule,
		" CELLULAR NETWORK SIMULATOR",
		" OOPD Project - Monsoon 2025",
		bannerRule,
	)
}

// RenderFooter writes the closing banner of a full run.
func RenderFooter(w io.Writer) error {
	return writeLines(w,
		"",
		bannerRule,
		" SIMULATION COMPLETE",
		bannerRule,
	)
}

// RenderHeader writes the section heading for gen.
func RenderHeader(w io.Writer, gen model.Generation) error {
	return writeLines(w, "", fmt.Sprintf("========== %s COMMUNICATION SIMULATION ==========", gen))
}

// RenderBody writes the details of a finished generation simulation.
func RenderBody(w io.Writer, r *Report) error {
	p := r.Profile
	lines := []string{"Technology: " + p.Technology}

	if p.HasSecondaryBand() {
		lines = append(lines,
			"Primary bandwidth: "+formatBandwidth(p.TotalBandwidthKHz),
			fmt.Sprintf("Additional bandwidth: %s at %d MHz", formatBandwidthShort(p.SecondaryBandwidthKHz), p.SecondaryBandMHz),
			fmt.Sprintf("Channel bandwidth (primary): %d kHz", p.ChannelBandwidthKHz),
		)
	} else {
		lines = append(lines,
			"Bandwidth: "+formatBandwidth(p.TotalBandwidthKHz),
			fmt.Sprintf("Channel bandwidth: %d kHz", p.ChannelBandwidthKHz),
		)
	}
	lines = append(lines,
		fmt.Sprintf("Number of channels: %d", p.Channels()),
		fmt.Sprintf("Users per channel: %d", p.UsersPerChannel),
	)
	if p.HasSecondaryBand() {
		lines = append(lines, fmt.Sprintf("Users per 1 MHz (%d MHz band): %d", p.SecondaryBandMHz, p.UsersPerMHz))
	}
	if p.MaxAntennas > 1 {
		lines = append(lines, fmt.Sprintf("Number of antennas: %d", r.Antennas))
	}
	lines = append(lines,
		"Messages per user: "+formatMessages(p),
		fmt.Sprintf("Total capacity: %d users", r.Capacity),
		"",
		"Adding users to first channel ("+firstChannelLabel(p)+")...",
		"Users on first channel: "+formatIDs(r.FirstChannel),
	)
	if r.OverheadPercent > 0 {
		lines = append(lines, fmt.Sprintf("Core overhead: %d messages per 100 (max %d devices per core)",
			r.OverheadPercent, r.CoreMaxDevices))
	}
	lines = append(lines, fmt.Sprintf("Cellular cores needed: %d", r.CoresNeeded))
	return writeLines(w, lines...)
}

// Render writes the heading and body of r.
func Render(w io.Writer, r *Report) error {
	if err := RenderHeader(w, r.Generation); err != nil {
		return err
	}
	return RenderBody(w, r)
}

// RenderError writes the per-generation failure line.
func RenderError(w io.Writer, gen model.Generation, err error) error {
	_, werr := fmt.Fprintf(w, "%s Simulation Error: %v\n", gen, err)
	return werr
}

func formatBandwidth(khz int) string {
	if khz%1000 == 0 {
		return fmt.Sprintf("%d MHz (%d kHz)", khz/1000, khz)
	}
	return fmt.Sprintf("%d kHz", khz)
}

func formatBandwidthShort(khz int) string {
	if khz%1000 == 0 {
		return fmt.Sprintf("%d MHz", khz/1000)
	}
	return fmt.Sprintf("%d kHz", khz)
}

func formatMessages(p tower.Profile) string {
	probe := model.NewUserDevice(0, p.Generation, 0, 0, model.BandPrimary)
	if probe.VoiceMessages() > 0 && probe.MessagesGenerated() == p.MessagesPerUser {
		return fmt.Sprintf("%d (%d data + %d voice)", p.MessagesPerUser, probe.DataMessages(), probe.VoiceMessages())
	}
	return strconv.Itoa(p.MessagesPerUser)
}

func firstChannelLabel(p tower.Profile) string {
	label := fmt.Sprintf("0-%d kHz", p.ChannelBandwidthKHz)
	if p.MaxAntennas > 1 {
		label += ", Antenna 0"
	}
	if p.HasSecondaryBand() {
		label += ", Primary band"
	}
	return label
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return "None"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
