package redisbackend

import (
	"strconv"
	"strings"
	"time"

	"github.com/aalemi-dev/redis-profiler/monitor"
)

// ParseMonitorLine parses one line of MONITOR output:
//
//	1339518083.107412 [0 127.0.0.1:60866] "keys" "*"
//
// The source in brackets may also be "lua" or "unix:/path/to/socket". Lines that are not
// command reports, such as the initial "OK", return false.
func ParseMonitorLine(line string) (monitor.RawEvent, bool) {
	line = strings.TrimRight(line, "\r\n")

	stamp, rest, ok := strings.Cut(line, " ")
	if !ok {
		return monitor.RawEvent{}, false
	}
	ts, ok := parseTimestamp(stamp)
	if !ok {
		return monitor.RawEvent{}, false
	}

	if !strings.HasPrefix(rest, "[") {
		return monitor.RawEvent{}, false
	}
	// IPv6 sources contain brackets themselves; the meta block ends at the last ']'
	// before the first argument.
	head := rest
	if q := strings.IndexByte(rest, '"'); q >= 0 {
		head = rest[:q]
	}
	end := strings.LastIndexByte(head, ']')
	if end < 0 {
		return monitor.RawEvent{}, false
	}
	dbPart, source, ok := strings.Cut(rest[1:end], " ")
	if !ok {
		return monitor.RawEvent{}, false
	}
	db, err := strconv.Atoi(dbPart)
	if err != nil {
		return monitor.RawEvent{}, false
	}

	args, ok := parseArgs(rest[end+1:])
	if !ok {
		return monitor.RawEvent{}, false
	}

	return monitor.RawEvent{
		Timestamp: ts,
		Args:      args,
		Source:    source,
		Database:  db,
	}, true
}

// parseTimestamp parses "<seconds>.<microseconds>".
func parseTimestamp(s string) (time.Time, bool) {
	secPart, usecPart, _ := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	var usec int64
	if usecPart != "" {
		if len(usecPart) > 6 {
			usecPart = usecPart[:6]
		}
		usec, err = strconv.ParseInt(usecPart, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		for i := len(usecPart); i < 6; i++ {
			usec *= 10
		}
	}
	return time.Unix(sec, usec*int64(time.Microsecond)), true
}

// parseArgs splits a sequence of double-quoted, space separated arguments.
func parseArgs(s string) ([]string, bool) {
	var args []string
	i := 0
	for i < len(s) {
		if s[i] == ' ' {
			i++
			continue
		}
		if s[i] != '"' {
			return nil, false
		}

		j := i + 1
		for j < len(s) && s[j] != '"' {
			if s[j] == '\\' {
				j++
			}
			j++
		}
		if j >= len(s) {
			return nil, false
		}

		args = append(args, unquote(s[i:j+1]))
		i = j + 1
	}
	return args, len(args) > 0
}

// unquote decodes the escapes Redis uses when printing an argument (\n, \r, \t, \a, \b,
// \\, \" and \xHH). Anything strconv cannot decode is returned without its quotes.
func unquote(quoted string) string {
	if s, err := strconv.Unquote(quoted); err == nil {
		return s
	}
	return quoted[1 : len(quoted)-1]
}

// FormatTimestamp renders t the way MONITOR prints it.
func FormatTimestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + "." + leftPad(strconv.Itoa(t.Nanosecond()/1000), 6)
}

func leftPad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}
