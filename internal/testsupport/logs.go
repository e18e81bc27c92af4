package testsupport

import (
	"fmt"
	"strings"
)

// LogTitle describes one title of a synthetic ripper log.
type LogTitle struct {
	Duration string
	Chapters int
	Segments string
	Source   string
}

// RipLog builds a minimal MakeMKV robot log for a Blu-ray disc labelled
// volume with the given titles. Each title carries one English audio track.
func RipLog(volume string, titles ...LogTitle) string {
	var b strings.Builder
	b.WriteString("MSG:1005,0,1,\"MakeMKV started\",\"%1 started\",\"MakeMKV\"\n")
	b.WriteString("CINFO:1,6209,\"Blu-ray disc\"\n")
	fmt.Fprintf(&b, "CINFO:2,0,%q\n", volume)
	fmt.Fprintf(&b, "CINFO:32,0,%q\n", volume)
	fmt.Fprintf(&b, "TCOUNT:%d\n", len(titles))
	for i, title := range titles {
		source := title.Source
		if source == "" {
			source = fmt.Sprintf("%05d.mpls", 800+i)
		}
		segments := strings.Count(title.Segments, ",") + 1
		if title.Segments == "" {
			segments = 0
		}
		fmt.Fprintf(&b, "TINFO:%d,2,0,\"Title %d\"\n", i, i+1)
		fmt.Fprintf(&b, "TINFO:%d,8,0,\"%d\"\n", i, title.Chapters)
		fmt.Fprintf(&b, "TINFO:%d,9,0,%q\n", i, title.Duration)
		fmt.Fprintf(&b, "TINFO:%d,11,0,\"%d\"\n", i, int64(i+1)*1_000_000_000)
		fmt.Fprintf(&b, "TINFO:%d,16,0,%q\n", i, source)
		fmt.Fprintf(&b, "TINFO:%d,25,0,\"%d\"\n", i, segments)
		fmt.Fprintf(&b, "TINFO:%d,26,0,%q\n", i, title.Segments)
		fmt.Fprintf(&b, "SINFO:%d,0,1,6201,\"Video\"\n", i)
		fmt.Fprintf(&b, "SINFO:%d,0,19,0,\"1920x1080\"\n", i)
		fmt.Fprintf(&b, "SINFO:%d,1,1,6202,\"Audio\"\n", i)
		fmt.Fprintf(&b, "SINFO:%d,1,3,0,\"eng\"\n", i)
		fmt.Fprintf(&b, "SINFO:%d,1,30,0,\"DTS-HD MA Surround 5.1 English\"\n", i)
	}
	return b.String()
}
