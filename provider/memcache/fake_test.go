package memcache

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// fakeServer speaks the subset of the memcached text protocol used by
// gomemcache for get/set/delete/flush_all/version.
type fakeServer struct {
	ln   net.Listener
	mu   sync.Mutex
	data map[string][]byte
	wg   sync.WaitGroup
}

func startFake(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, data: make(map[string][]byte)}
	s.wg.Add(1)
	go s.accept()
	t.Cleanup(func() {
		_ = ln.Close()
		s.wg.Wait()
	})
	return s
}

func (s *fakeServer) Addr() string { return s.ln.Addr().String() }

func (s *fakeServer) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(conn)
	}
}

func (s *fakeServer) serve(conn net.Conn) {
	defer conn.Close()
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	for {
		line, err := rw.ReadString('\n')
		if err != nil {
			return
		}
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "version":
			fmt.Fprint(rw, "VERSION 1.6.0\r\n")
		case "get", "gets":
			s.mu.Lock()
			for _, k := range f[1:] {
				if v, ok := s.data[k]; ok {
					fmt.Fprintf(rw, "VALUE %s 0 %d 1\r\n", k, len(v))
					rw.Write(v)
					fmt.Fprint(rw, "\r\n")
				}
			}
			s.mu.Unlock()
			fmt.Fprint(rw, "END\r\n")
		case "set":
			n, _ := strconv.Atoi(f[4])
			buf := make([]byte, n+2)
			if _, err := io.ReadFull(rw, buf); err != nil {
				return
			}
			s.mu.Lock()
			s.data[f[1]] = buf[:n]
			s.mu.Unlock()
			fmt.Fprint(rw, "STORED\r\n")
		case "delete":
			s.mu.Lock()
			_, ok := s.data[f[1]]
			delete(s.data, f[1])
			s.mu.Unlock()
			if ok {
				fmt.Fprint(rw, "DELETED\r\n")
			} else {
				fmt.Fprint(rw, "NOT_FOUND\r\n")
			}
		case "flush_all":
			s.mu.Lock()
			s.data = make(map[string][]byte)
			s.mu.Unlock()
			fmt.Fprint(rw, "OK\r\n")
		default:
			fmt.Fprint(rw, "ERROR\r\n")
		}
		if err := rw.Flush(); err != nil {
			return
		}
	}
}
