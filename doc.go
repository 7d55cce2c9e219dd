// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jtree implements a JSON scanner and token queue.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON.  Construct a scanner
// from an io.Reader and call its Next method to iterate over the stream. Next
// advances to the next input token and returns nil, or reports an error:
//
//	s := jtree.NewScanner(input)
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other error
// indicates an I/O or lexical error in the input, and has concrete type
// *jtree.LexError:
//
//	if s.Err() != io.EOF {
//	   log.Fatalf("Scanning failed: %v", err)
//	}
//
// The text of a string token is its decoded value, without quotation marks
// and with escape sequences replaced. Positions are reported as 1-based line
// and column numbers, where columns count Unicode code points.
//
// # Token queues
//
// Tokenize and TokenizeReader scan an entire input into a Queue of tokens.
// A Queue delivers tokens in input order, and remembers the position of the
// end of the input so that a parser can report where an incomplete document
// stopped:
//
//	q, err := jtree.Tokenize(`{"a": 1}`)
//	if err != nil {
//	   log.Fatalf("Tokenize: %v", err)
//	}
//	for q.Len() != 0 {
//	   tok, _ := q.Next()
//	   log.Printf("%v at %v", tok, tok.Pos)
//	}
//
// Package ast builds trees of JSON values from a Queue.
package jtree
