package emit

import (
	"bytes"
	"text/template"

	"github.com/dekarrin/lexgen/internal/diag"
)

// rustTmpl has no direct precedent in the reference implementation this
// system was distilled from (that implementation never got as far as a Rust
// emitter), so it's built fresh from the same §4.F simulator contract as
// cpp.go: a plain (state, input byte) match producing the next state, with a
// single generic remember/rewind block handling the trap transition. Like the
// C++ lexer it reads one byte at a time without UTF-8 decoding, so
// transitions on code points above 0xFF are never taken.
var rustTmpl = template.Must(template.New("lexer.rs").Parse(`#[derive(Debug, Clone, Copy, PartialEq, Eq)]
pub enum Token {
    Eof,
    Err,
{{- range .Tokens}}
    {{.}},
{{- end}}
}

pub struct Lexer {
    bytes: Vec<u8>,
    pos: usize,
}

impl Lexer {
    pub fn new(contents: String) -> Self {
        Lexer { bytes: contents.into_bytes(), pos: 0 }
    }

    fn next_chr(&mut self) -> Option<u32> {
        if self.pos < self.bytes.len() {
            let c = self.bytes[self.pos] as u32;
            self.pos += 1;
            Some(c)
        } else {
            None
        }
    }

    pub fn next(&mut self) -> (Token, String) {
        let token_start = self.pos;
        let mut state: usize = 0;
        let mut last_accept: Option<Token> = None;
        let mut last_len: usize = 0;
        let mut len: usize = 0;

        loop {
            let ch = match self.next_chr() {
                Some(c) => c,
                None => {
                    return match last_accept {
                        Some(tok) => {
                            self.pos = token_start + last_len;
                            (tok, self.slice(token_start, last_len))
                        }
                        None if len == 0 => (Token::Eof, String::new()),
                        None => (Token::Err, self.slice(token_start, len)),
                    };
                }
            };

            let next_state: usize = match state {
{{- range $i, $acc := .DFA.States}}
{{- if ne $i $.Trap}}
                {{$i}} => match ch {
                {{- range $.DFA.Connections $i}}
                    {{.Lo}}..={{.Hi}} => {{.To}},
                {{- end}}
                    _ => {{$.Trap}},
                },
{{- end}}
{{- end}}
                _ => {{.Trap}},
            };

            len += 1;
            if next_state == {{.Trap}} {
                self.pos -= 1;
                return match last_accept {
                    Some(tok) => {
                        self.pos = token_start + last_len;
                        (tok, self.slice(token_start, last_len))
                    }
                    None => {
                        self.pos = token_start + 1;
                        (Token::Err, self.slice(token_start, 1))
                    }
                };
            }

            state = next_state;
            match state {
{{- range $i, $acc := .DFA.States}}
{{- if and $acc (ne $i $.Trap)}}
                {{$i}} => {
                    last_accept = Some(Token::{{$acc}});
                    last_len = len;
                }
{{- end}}
{{- end}}
                _ => {}
            }
        }
    }

    fn slice(&self, start: usize, len: usize) -> String {
        String::from_utf8_lossy(&self.bytes[start..start + len]).into_owned()
    }
}
`))

func writeRust(v view, outDir string) error {
	var out bytes.Buffer
	if err := rustTmpl.Execute(&out, v); err != nil {
		return diag.Wrap(diag.IO, err)
	}
	return writeFile(outDir, "lexer.rs", out.String())
}
