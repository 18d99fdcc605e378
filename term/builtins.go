package term

import "strings"

// DefaultCommands builds the standard command table for this terminal.
// Callers may append their own entries before SetCommands.
func (t *Terminal) DefaultCommands() []Command {
	return []Command{
		{Name: "clear", Help: "Clear the screen", Handler: t.cmdClear},
		{Name: "exit", Help: "Exit the terminal and continue boot", Handler: t.cmdExit},
		{Name: "help", Help: "Show available commands", Handler: t.cmdHelp},
		{Name: "status", Help: "Show device and network status", Handler: t.cmdStatus},
		{Name: "network", Help: "Show network status", Handler: t.cmdNetwork},
		{Name: "settings", Help: "Show settings commands", Handler: t.cmdSettings},
		{Name: "print", Help: "Print all settings", Handler: t.cmdPrint},
		{Name: "save", Help: "Persist settings", Handler: t.cmdSave},
		{Name: "erase", Help: "Erase persisted settings", Handler: t.cmdErase},
		{Name: "get", Help: "get <key>: show one setting", Handler: t.cmdGet},
		{Name: "put_int", Help: "put_int <key> <value>", Handler: t.cmdPutInt},
		{Name: "put_bool", Help: "put_bool <key> <true|false>", Handler: t.cmdPutBool},
		{Name: "put_str", Help: "put_str <key> <value>", Handler: t.cmdPutStr},
		{Name: "", Handler: t.cmdUnknown},
	}
}

func (t *Terminal) cmdClear(string) { t.ClearScreen() }

func (t *Terminal) cmdExit(string) {
	t.PrintString("Exiting terminal...\n")
	t.disp.SendCommand(DisplayCmdContinue)
}

func (t *Terminal) cmdHelp(string) {
	t.PrintString("Available commands:\n")
	for _, c := range t.commands {
		if c.Name == "" {
			continue
		}
		t.Printf("  %-10s %s\n", c.Name, c.Help)
	}
}

func (t *Terminal) cmdStatus(string) {
	t.PrintStatus()
}

func (t *Terminal) cmdNetwork(string) {
	t.PrintNetwork()
}

func (t *Terminal) cmdSettings(string) {
	t.PrintString("Settings commands:\n" +
		"  print              Print all settings\n" +
		"  save               Persist settings to flash\n" +
		"  erase              Erase persisted settings\n" +
		"  get <key>          Show one setting\n" +
		"  put_int <key> <v>  Set an integer setting\n" +
		"  put_bool <key> <v> Set a boolean setting\n" +
		"  put_str <key> <v>  Set a string setting\n")
}

func (t *Terminal) cmdPrint(string) {
	if t.store == nil {
		t.PrintString("No settings store.\n")
		return
	}
	t.PrintString(t.store.PrintAll())
}

func (t *Terminal) cmdSave(string) {
	if t.store == nil {
		t.PrintString("No settings store.\n")
		return
	}
	if err := t.store.Save(); err != nil {
		t.Printf("Error saving settings: %v\n", err)
		return
	}
	t.PrintString("Settings saved.\n")
}

func (t *Terminal) cmdErase(string) {
	if t.store == nil {
		t.PrintString("No settings store.\n")
		return
	}
	if err := t.store.Erase(); err != nil {
		t.Printf("Error erasing settings: %v\n", err)
		return
	}
	t.PrintString("Settings erased.\n")
}

func (t *Terminal) cmdGet(arg string) {
	key, _, ok := parseKeyAndTail(arg)
	if !ok {
		t.PrintString("No key provided for 'get' command.\n")
		return
	}
	if t.store == nil {
		t.PrintString("No settings store.\n")
		return
	}
	e, found := t.store.FindEntry(key)
	if !found {
		t.PrintString("Key not found.\n")
		return
	}
	t.Printf("%s (%s) = %s\n", e.Key, e.Type, e.Value)
}

func (t *Terminal) cmdPutInt(arg string) {
	key, tail, ok := parseKeyAndTail(arg)
	if !ok {
		t.PrintString("No key provided for 'put_int' command.\n")
		return
	}
	if t.store == nil {
		t.PrintString("No settings store.\n")
		return
	}
	v, ok := parseIntStrict(tail)
	if !ok {
		t.PrintString("Invalid integer value.\n")
		return
	}
	if err := t.store.PutInt(key, v); err != nil {
		t.Printf("Error: %v\n", err)
		return
	}
	t.PrintString("OK\n")
}

func (t *Terminal) cmdPutBool(arg string) {
	key, tail, ok := parseKeyAndTail(arg)
	if !ok {
		t.PrintString("No key provided for 'put_bool' command.\n")
		return
	}
	if t.store == nil {
		t.PrintString("No settings store.\n")
		return
	}
	v, ok := parseBoolToken(tail)
	if !ok {
		t.PrintString("Invalid boolean value. Use true/false, t/f or 1/0.\n")
		return
	}
	if err := t.store.PutBool(key, v); err != nil {
		t.Printf("Error: %v\n", err)
		return
	}
	t.PrintString("OK\n")
}

func (t *Terminal) cmdPutStr(arg string) {
	key, tail, ok := parseKeyAndTail(arg)
	if !ok {
		t.PrintString("No key provided for 'put_str' command.\n")
		return
	}
	if t.store == nil {
		t.PrintString("No settings store.\n")
		return
	}
	if err := t.store.PutString(key, tail); err != nil {
		t.Printf("Error: %v\n", err)
		return
	}
	t.PrintString("OK\n")
}

func (t *Terminal) cmdUnknown(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	t.PrintString("Unknown command. Type 'help' for a list of commands.\n")
}
