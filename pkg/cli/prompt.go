package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// PromptLine displays a prompt and reads a full line of input from the
// user. The returned string is trimmed of surrounding whitespace
// (including the newline).
func PromptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
