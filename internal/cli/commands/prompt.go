package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	inReader *bufio.Reader
	inSource io.Reader
)

// lineReader — общий буферизованный читатель In, чтобы подряд идущие запросы не теряли ввод.
func lineReader() *bufio.Reader {
	if inReader == nil || inSource != In {
		inSource = In
		inReader = bufio.NewReader(In)
	}
	return inReader
}

// readLine читает одну строку без перевода строки. io.EOF — только если строки нет совсем.
func readLine() (string, error) {
	line, err := lineReader().ReadString('\n')
	if line == "" && err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword спрашивает пароль без эха, если stdin — терминал, иначе читает строку из In.
// Переменная, чтобы тесты могли подставить ответы.
var readPassword = func(prompt string) (string, error) {
	fmt.Fprint(Out, prompt)
	if f, ok := In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(Out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := readLine()
	if err != nil {
		return "", errors.New("no password given")
	}
	return line, nil
}
