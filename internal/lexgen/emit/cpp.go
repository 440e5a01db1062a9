package emit

import (
	"bytes"
	"text/template"

	"github.com/dekarrin/lexgen/internal/diag"
)

// cppHeaderTmpl mirrors the structure of the original C++ codegen's header:
// a Token enum of reserved kinds plus every user rule name, and a Lexer type
// exposing a single next() operation.
var cppHeaderTmpl = template.Must(template.New("cpp.h").Parse(`#pragma once
#include <cstdint>
#include <cstddef>
#include <string>

enum class Token {
    _EOF,
    _ERR,
{{- range .Tokens}}
    {{.}},
{{- end}}
};

class Lexer {
private:
    std::string contents;
    size_t pos;
    uint32_t next_chr();
    void rev_chr();

public:
    explicit Lexer(std::string contents);
    Token next();
};
`))

// cppBodyTmpl implements the §4.F simulator contract directly: state is
// advanced by a plain (state, input byte) -> state switch, and a single
// generic block after the switch remembers the most recent accepting state
// and rewinds to it when the trap is reached, rather than baking the
// remember/rewind decision into each individual transition the way the
// historical reference implementation this was distilled from did (which
// only ever undid one character, losing maximal munch across more than one
// lookahead character).
//
// Input is read one byte at a time and is not UTF-8 decoded: each byte of a
// multi-byte character is looked up as its own value, so transitions on code
// points above 0xFF are never taken.
var cppBodyTmpl = template.Must(template.New("cpp.cpp").Parse(`#include "lexer.h"

uint32_t Lexer::next_chr() {
    if (this->pos < this->contents.size()) {
        return (uint32_t)(unsigned char)this->contents[this->pos++];
    }
    return (uint32_t)-1;
}

void Lexer::rev_chr() {
    this->pos--;
}

Lexer::Lexer(std::string content) : contents(std::move(content)), pos(0) {}

Token Lexer::next() {
    size_t tokenStart = this->pos;
    size_t state = 0;
    bool hasAccept = false;
    Token lastAccept = Token::_ERR;
    size_t lastLen = 0;
    size_t len = 0;

    while (true) {
        uint32_t ch = this->next_chr();
        if (ch == (uint32_t)-1) {
            if (hasAccept) {
                this->pos = tokenStart + lastLen;
                return lastAccept;
            }
            return len == 0 ? Token::_EOF : Token::_ERR;
        }

        size_t next_state;
        switch (state) {
{{- range $i, $acc := .DFA.States}}
{{- if ne $i $.Trap}}
        case {{$i}}:
            switch (ch) {
            {{- range $.DFA.Connections $i}}
            {{- if eq .Lo .Hi}}
            case {{.Lo}}:
            {{- else}}
            case {{.Lo}} ... {{.Hi}}:
            {{- end}}
                next_state = {{.To}};
                break;
            {{- end}}
            default:
                next_state = {{$.Trap}};
                break;
            }
            break;
{{- end}}
{{- end}}
        default:
            next_state = {{.Trap}};
            break;
        }

        len++;
        if (next_state == {{.Trap}}) {
            this->rev_chr();
            if (hasAccept) {
                this->pos = tokenStart + lastLen;
                return lastAccept;
            }
            this->pos = tokenStart + 1;
            return Token::_ERR;
        }

        state = next_state;
        switch (state) {
{{- range $i, $acc := .DFA.States}}
{{- if and $acc (ne $i $.Trap)}}
        case {{$i}}:
            hasAccept = true;
            lastAccept = Token::{{$acc}};
            lastLen = len;
            break;
{{- end}}
{{- end}}
        default:
            break;
        }
    }
}
`))

func writeCPP(v view, outDir string) error {
	var header, body bytes.Buffer
	if err := cppHeaderTmpl.Execute(&header, v); err != nil {
		return diag.Wrap(diag.IO, err)
	}
	if err := cppBodyTmpl.Execute(&body, v); err != nil {
		return diag.Wrap(diag.IO, err)
	}
	if err := writeFile(outDir, "lexer.h", header.String()); err != nil {
		return err
	}
	return writeFile(outDir, "lexer.cpp", body.String())
}
