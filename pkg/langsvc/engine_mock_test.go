package langsvc_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/walteh/embedls/pkg/diagnostic"
	"github.com/walteh/embedls/pkg/langsvc"
)

type MockEngine struct {
	mock.Mock
	language string
}

var _ langsvc.Engine = (*MockEngine)(nil)

func (m *MockEngine) LanguageID() string {
	return m.language
}

func (m *MockEngine) diagnostics(args mock.Arguments) ([]diagnostic.Diagnostic, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]diagnostic.Diagnostic), args.Error(1)
}

func (m *MockEngine) locations(args mock.Arguments) ([]langsvc.Location, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]langsvc.Location), args.Error(1)
}

func (m *MockEngine) fileEdits(args mock.Arguments) ([]langsvc.FileEdits, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]langsvc.FileEdits), args.Error(1)
}

func (m *MockEngine) SyntacticDiagnostics(ctx context.Context, file string) ([]diagnostic.Diagnostic, error) {
	return m.diagnostics(m.Called(ctx, file))
}

func (m *MockEngine) SemanticDiagnostics(ctx context.Context, file string) ([]diagnostic.Diagnostic, error) {
	return m.diagnostics(m.Called(ctx, file))
}

func (m *MockEngine) Definition(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	return m.locations(m.Called(ctx, file, offset))
}

func (m *MockEngine) TypeDefinition(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	return m.locations(m.Called(ctx, file, offset))
}

func (m *MockEngine) Implementation(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	return m.locations(m.Called(ctx, file, offset))
}

func (m *MockEngine) References(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	return m.locations(m.Called(ctx, file, offset))
}

func (m *MockEngine) RenameLocations(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	return m.locations(m.Called(ctx, file, offset))
}

func (m *MockEngine) Completions(ctx context.Context, file string, offset int) (*langsvc.CompletionList, error) {
	args := m.Called(ctx, file, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*langsvc.CompletionList), args.Error(1)
}

func (m *MockEngine) Hover(ctx context.Context, file string, offset int) (*langsvc.Hover, error) {
	args := m.Called(ctx, file, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*langsvc.Hover), args.Error(1)
}

func (m *MockEngine) FoldingRanges(ctx context.Context, file string) ([]langsvc.FoldingRange, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]langsvc.FoldingRange), args.Error(1)
}

func (m *MockEngine) Format(ctx context.Context, file string, opts langsvc.FormatOptions) ([]langsvc.TextEdit, error) {
	args := m.Called(ctx, file, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]langsvc.TextEdit), args.Error(1)
}

func (m *MockEngine) OrganizeImports(ctx context.Context, file string) ([]langsvc.FileEdits, error) {
	return m.fileEdits(m.Called(ctx, file))
}

func (m *MockEngine) FileRenameEdits(ctx context.Context, oldName, newName string) ([]langsvc.FileEdits, error) {
	return m.fileEdits(m.Called(ctx, oldName, newName))
}

func (m *MockEngine) Program(ctx context.Context) (langsvc.Program, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(langsvc.Program), args.Error(1)
}
