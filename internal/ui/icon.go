package ui

// iconBytes is a 16x16 single-color PNG used as the tray icon until a real
// one ships.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x1f, 0x49, 0x44, 0x41, 0x54, 0x38, 0x8d, 0x63, 0x64, 0x60, 0x60, 0xf8,
	0xcf, 0x40, 0x01, 0x60, 0x62, 0xa0, 0x10, 0x8c, 0x1a, 0x30, 0x6a, 0xc0,
	0xa8, 0x01, 0x83, 0xc5, 0x00, 0x00, 0x6b, 0x21, 0x01, 0x24, 0xf2, 0xd7,
	0x9a, 0x7a, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42,
	0x60, 0x82,
}
