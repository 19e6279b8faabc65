// Package ofx parses OFX/QFX bank statement exports into statement entries.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
)

// Parser implements OFX/QFX statement parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// Parse decodes a statement file and returns its entries in statement
// order. It fails with common.ErrMalformedStatement when the file cannot
// be decoded or carries no transaction list.
func (p *Parser) Parse(_ context.Context, reader io.Reader) ([]model.StatementEntry, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedStatement, err)
	}

	var entries []model.StatementEntry
	var lists int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lists++
			entries = append(entries, p.convertList(stmt.BankTranList)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lists++
			entries = append(entries, p.convertList(stmt.BankTranList)...)
		}
	}

	if lists == 0 {
		return nil, fmt.Errorf("%w: no transaction list in statement", common.ErrMalformedStatement)
	}

	slog.Info("parsed statement",
		"entries", len(entries),
		"statements", lists)

	return entries, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList) []model.StatementEntry {
	entries := make([]model.StatementEntry, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		entries = append(entries, p.convertTransaction(ofxTx))
	}
	return entries
}

// convertTransaction converts an OFX transaction to a statement entry.
// Statement amounts keep their sign: negative means money out.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) model.StatementEntry {
	return model.StatementEntry{
		ExternalID: string(ofxTx.FiTID),
		Amount:     decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2),
		Name:       string(ofxTx.Name),
		Memo:       string(ofxTx.Memo),
		RefNum:     string(ofxTx.RefNum),
		Posted:     ofxTx.DtPosted.Time,
	}
}
