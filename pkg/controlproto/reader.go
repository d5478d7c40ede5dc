package controlproto

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reply is one complete reply from the control port: a three-digit status
// code and the payload of every line that carried it. Replies coded 650 are
// asynchronous events pushed by the daemon rather than answers to a command.
type Reply struct {
	Code  int
	Lines []string
}

// IsOK reports whether the reply is a 2xx success.
func (r Reply) IsOK() bool {
	return r.Code >= 200 && r.Code < 300
}

// IsAsync reports whether the reply is an asynchronous event.
func (r Reply) IsAsync() bool {
	return r.Code == 650
}

type Reader struct {
	rd *bufio.Reader
}

func NewReader(rd io.Reader) *Reader {
	return &Reader{rd: bufio.NewReader(rd)}
}

// ReadReply reads one complete reply. Continuation lines use a '-'
// separator, data blocks a '+' separator (terminated by a lone '.'), and
// the final line a space. All lines of a reply must carry the same code.
func (r *Reader) ReadReply() (Reply, error) {
	var reply Reply

	for {
		line, err := r.readLine()
		if err != nil {
			return Reply{}, err
		}
		if len(line) < 4 {
			return Reply{}, fmt.Errorf("controlproto: short reply line %q", line)
		}

		code, err := strconv.Atoi(line[:3])
		if err != nil {
			return Reply{}, fmt.Errorf("controlproto: bad status code in %q", line)
		}
		if reply.Lines == nil {
			reply.Code = code
		} else if code != reply.Code {
			return Reply{}, fmt.Errorf("controlproto: status code changed mid-reply (%d -> %d)", reply.Code, code)
		}

		sep, text := line[3], line[4:]
		reply.Lines = append(reply.Lines, text)

		switch sep {
		case ' ':
			return reply, nil
		case '-':
			continue
		case '+':
			if err := r.readDataBlock(&reply); err != nil {
				return Reply{}, err
			}
		default:
			return Reply{}, fmt.Errorf("controlproto: unknown separator %q in %q", sep, line)
		}
	}
}

func (r *Reader) readDataBlock(reply *Reply) error {
	for {
		line, err := r.readLine()
		if err != nil {
			return err
		}
		if line == "." {
			return nil
		}
		// A leading '.' escapes payload lines that start with a dot.
		reply.Lines = append(reply.Lines, strings.TrimPrefix(line, "."))
	}
}

func (r *Reader) readLine() (string, error) {
	line, err := r.rd.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
