package main

import (
	"fmt"
	"os"

	"github.com/campuspass/outpass-server/internal/util"
)

// Generates a bearer token plus the hash to store in members.token_hash.
func main() {
	token, err := util.GenerateToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("token: %s\n", token)
	fmt.Printf("hash:  %s\n", util.HashToken(token))
}
