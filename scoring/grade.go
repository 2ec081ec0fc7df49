package scoring

// gradeFloors lists the lowest score earning each letter, best first.
var gradeFloors = []struct {
	min    int
	letter string
}{
	{90, "A"},
	{80, "B"},
	{70, "C"},
	{60, "D"},
}

// Grade is the letter printed beside a category or overall score in text
// reports. Scores below the D floor grade F.
func Grade(score int) string {
	for _, f := range gradeFloors {
		if score >= f.min {
			return f.letter
		}
	}
	return "F"
}
