package swiftgen

import "sort"

// Runtime helpers the generated code depends on. They are written verbatim
// into the Support directory when requested.

const lossyDecodableArraySource = `import Foundation

/// Decodes an array element by element, dropping elements that fail to decode.
public struct LossyDecodableArray<Element: Decodable>: Decodable {
    public let elements: [Element]

    public init(from decoder: Decoder) throws {
        var container = try decoder.unkeyedContainer()
        var elements = [Element]()
        if let count = container.count {
            elements.reserveCapacity(count)
        }
        while !container.isAtEnd {
            if let element = try? container.decode(Element.self) {
                elements.append(element)
            } else {
                _ = try? container.decode(Skipped.self)
            }
        }
        self.elements = elements
    }

    private struct Skipped: Decodable {}
}
`

const unknownCaseRepresentableSource = `import Foundation

/// An enumeration with a designated fallback for unrecognized raw values.
public protocol UnknownCaseRepresentable: RawRepresentable, CaseIterable where RawValue: Equatable {
    static var unknownCase: Self { get }
}

public extension UnknownCaseRepresentable {
    init(rawValue: RawValue) {
        let value = Self.allCases.first { $0.rawValue == rawValue }
        self = value ?? Self.unknownCase
    }
}

public extension UnknownCaseRepresentable where Self: Decodable, RawValue: Decodable {
    init(from decoder: Decoder) throws {
        let container = try decoder.singleValueContainer()
        let rawValue = try container.decode(RawValue.self)
        self.init(rawValue: rawValue)
    }
}
`

var supportFiles = map[string]string{
	"LossyDecodableArray.swift":      lossyDecodableArraySource,
	"UnknownCaseRepresentable.swift": unknownCaseRepresentableSource,
}

// SupportFiles returns the runtime helper sources keyed by file name.
func SupportFiles() map[string]string {
	out := make(map[string]string, len(supportFiles))
	for name, src := range supportFiles {
		out[name] = src
	}
	return out
}

// SupportFileNames returns the helper file names in sorted order.
func SupportFileNames() []string {
	names := make([]string, 0, len(supportFiles))
	for name := range supportFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
