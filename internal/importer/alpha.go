package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Workout is one session of an Alpha Progression CSV export.
type Workout struct {
	Name      string
	Date      time.Time
	Duration  string
	Exercises []Exercise
}

// Type is the workout type: the first segment of the session name, so
// "Legs · Day 2 · Week 4" is a Legs workout.
func (w Workout) Type() string {
	name, _, _ := strings.Cut(w.Name, " · ")
	return strings.TrimSpace(name)
}

// Exercise is one exercise block of a workout.
type Exercise struct {
	Name       string
	Equipment  string
	TargetReps int
	Sets       []Set
}

// Set is a working or warmup set. Weight is the added load for
// bodyweight-plus exercises.
type Set struct {
	Reps           int
	Weight         float64
	BodyweightPlus bool
	RIR            float64
	Warmup         bool
}

var (
	// "Legs · Day 2";"2026-02-19 4:54 h";"1:02 hr"
	workoutHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// "1. Hack Squats · Machine · 8 reps"[;"WU1 · 37,5 kg · 9 reps<br>..."]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// 1;115;8;1
	setRowRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)
)

const columnHeader = "#;KG;REPS;RIR"

// parser accumulates workouts line by line.
type parser struct {
	workouts []Workout
	workout  *Workout
	exercise *Exercise
}

func (p *parser) closeExercise() {
	if p.exercise != nil {
		p.workout.Exercises = append(p.workout.Exercises, *p.exercise)
		p.exercise = nil
	}
}

func (p *parser) closeWorkout() {
	if p.workout == nil {
		return
	}
	p.closeExercise()
	p.workouts = append(p.workouts, *p.workout)
	p.workout = nil
}

func (p *parser) line(line string) error {
	switch {
	case line == "":
		p.closeWorkout()
	case line == columnHeader:
	case workoutHeaderRe.MatchString(line):
		m := workoutHeaderRe.FindStringSubmatch(line)
		p.closeWorkout()
		date, err := parseWorkoutDate(m[2])
		if err != nil {
			return err
		}
		p.workout = &Workout{Name: m[1], Date: date, Duration: m[3]}
	case exerciseHeaderRe.MatchString(line):
		m := exerciseHeaderRe.FindStringSubmatch(line)
		if p.workout == nil {
			return fmt.Errorf("exercise outside a workout: %q", line)
		}
		p.closeExercise()
		target, _ := strconv.Atoi(m[4])
		p.exercise = &Exercise{
			Name:       strings.TrimSpace(m[2]),
			Equipment:  strings.TrimSpace(m[3]),
			TargetReps: target,
			Sets:       parseWarmups(m[6]),
		}
	case setRowRe.MatchString(line):
		m := setRowRe.FindStringSubmatch(line)
		if p.exercise == nil {
			return fmt.Errorf("set outside an exercise: %q", line)
		}
		weight, bwPlus := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		p.exercise.Sets = append(p.exercise.Sets, Set{
			Reps:           reps,
			Weight:         weight,
			BodyweightPlus: bwPlus,
			RIR:            parseDecimal(m[4]),
		})
	}
	// Anything else is notes or metadata.
	return nil
}

// ParseAlpha reads an Alpha Progression CSV export. Workouts are separated
// by blank lines.
func ParseAlpha(r io.Reader) ([]Workout, error) {
	var p parser
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		if err := p.line(strings.TrimSpace(sc.Text())); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.closeWorkout()
	return p.workouts, nil
}

func parseWorkoutDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse workout date %q", s)
}

// parseWarmups reads "WU1 · 37,5 kg · 9 reps<br>WU2 · ..." into warmup sets.
func parseWarmups(s string) []Set {
	var sets []Set
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		weight, bwPlus := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, Set{Reps: reps, Weight: weight, BodyweightPlus: bwPlus, Warmup: true})
	}
	return sets
}

// parseWeight reads "102,5" or the bodyweight-plus form "+35".
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return parseDecimal(rest), true
	}
	return parseDecimal(s), false
}

// parseDecimal accepts a comma as decimal separator.
func parseDecimal(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return f
}
