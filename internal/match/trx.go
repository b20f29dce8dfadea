// Package match parses TRX result files and reconciles them against the
// set of tests a run attempted, so that tests the run never reported on
// (crashed host, filter mismatch) are not silently left "Running" forever.
package match

import (
	"encoding/xml"
	"os"
	"strings"
)

// Outcome is a TRX-reported result for one test. TestName is the raw
// "testName" XML attribute, exactly as reported (it may carry parameter
// text or a namespace prefix); FullyQualifiedName is the best-effort
// "className.methodName" resolution from TestDefinitions, or TestName with
// its parameter text stripped when the definitions section doesn't
// resolve the result. Apply matches on TestName only.
type Outcome struct {
	TestName           string
	FullyQualifiedName string
	Passed             bool
	Failed             bool
	ErrorMessage       string
	StackTrace         string
	DurationMS         int64

	consumed bool
}

type trxTestRun struct {
	XMLName xml.Name    `xml:"TestRun"`
	Results trxResults  `xml:"Results"`
	TestDef trxTestDefs `xml:"TestDefinitions"`
}

type trxResults struct {
	UnitTestResults []trxUnitTestResult `xml:"UnitTestResult"`
}

type trxUnitTestResult struct {
	TestName string        `xml:"testName,attr"`
	Outcome  string        `xml:"outcome,attr"`
	TestId   string        `xml:"testId,attr"`
	Duration string        `xml:"duration,attr"`
	Output   trxOutput     `xml:"Output"`
}

type trxOutput struct {
	ErrorInfo trxErrorInfo `xml:"ErrorInfo"`
}

type trxErrorInfo struct {
	Message    string `xml:"Message"`
	StackTrace string `xml:"StackTrace"`
}

type trxTestDefs struct {
	UnitTests []trxUnitTest `xml:"UnitTest"`
}

type trxUnitTest struct {
	Id         string        `xml:"id,attr"`
	Name       string        `xml:"name,attr"`
	TestMethod trxTestMethod `xml:"TestMethod"`
}

type trxTestMethod struct {
	ClassName string `xml:"className,attr"`
	Name      string `xml:"name,attr"`
}

// ParseTRXFile reads and parses a TRX file produced by the test CLI's
// logger.
func ParseTRXFile(path string) ([]*Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTRX(data)
}

// ParseTRX parses TRX XML content into a flat list of outcomes, resolving
// each result's fully qualified name from the TestDefinitions section when
// possible.
func ParseTRX(data []byte) ([]*Outcome, error) {
	var run trxTestRun
	if err := xml.Unmarshal(data, &run); err != nil {
		return nil, err
	}

	defs := make(map[string]trxUnitTest, len(run.TestDef.UnitTests))
	for _, ut := range run.TestDef.UnitTests {
		defs[ut.Id] = ut
	}

	var out []*Outcome
	for _, r := range run.Results.UnitTestResults {
		o := &Outcome{
			TestName:     r.TestName,
			ErrorMessage: r.Output.ErrorInfo.Message,
			StackTrace:   r.Output.ErrorInfo.StackTrace,
			DurationMS:   parseDuration(r.Duration),
		}
		switch r.Outcome {
		case "Passed":
			o.Passed = true
		case "Failed":
			o.Failed = true
		}

		if def, ok := defs[r.TestId]; ok {
			className := def.TestMethod.ClassName
			if idx := strings.Index(className, ","); idx > 0 {
				className = strings.TrimSpace(className[:idx])
			}
			o.FullyQualifiedName = className + "." + def.TestMethod.Name
		} else {
			o.FullyQualifiedName = stripParams(r.TestName)
		}

		out = append(out, o)
	}
	return out, nil
}

func stripParams(name string) string {
	if idx := strings.Index(name, "("); idx > 0 {
		return strings.TrimSpace(name[:idx])
	}
	return name
}

// parseDuration reads TRX's "H:MM:SS.fffffff" duration format into
// milliseconds. Malformed input yields zero rather than an error: duration
// is cosmetic, never load-bearing for a match.
func parseDuration(s string) int64 {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	hours := atoiSafe(parts[0])
	minutes := atoiSafe(parts[1])
	secParts := strings.SplitN(parts[2], ".", 2)
	seconds := atoiSafe(secParts[0])

	ms := int64(hours)*3600_000 + int64(minutes)*60_000 + int64(seconds)*1000
	if len(secParts) == 2 {
		frac := secParts[1]
		if len(frac) > 3 {
			frac = frac[:3]
		}
		for len(frac) < 3 {
			frac += "0"
		}
		ms += int64(atoiSafe(frac))
	}
	return ms
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
