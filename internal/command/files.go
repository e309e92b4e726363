package command

import (
	"context"
	log "log/slog"
	"strings"
)

const systemOpsUnavailable = "I'm sorry, system operations are not available at the moment."

// dangerousCommands are refused outright, matched as case-insensitive
// substrings of the requested shell line.
var dangerousCommands = []string{"rm -rf", "deltree", "format", "del /f", "drop database"}

// confirm routes a destructive-action question through the prompter. With
// no prompter wired the operation is refused, never silently confirmed.
func (p *Processor) confirm(question string) bool {
	if p.prompter == nil {
		p.say("I have no way to confirm that right now, so I won't proceed.")
		return false
	}
	return p.prompter.Confirm(question)
}

// ask routes a follow-up question through the prompter.
func (p *Processor) ask(question string) (string, bool) {
	if p.prompter == nil {
		p.say("I have no way to ask follow-up questions right now.")
		return "", false
	}
	return p.prompter.Ask(question)
}

// allowPath consults the privacy settings before a filesystem mutation.
func (p *Processor) allowPath(path string) bool {
	if p.security == nil {
		return true
	}
	resolved := path
	if p.system != nil {
		resolved = p.system.ResolvePath(path)
	}
	if !p.security.AllowFileAccess(resolved) {
		p.say("That location is protected by your privacy settings, so I won't touch it.")
		return false
	}
	return true
}

func (p *Processor) openApplication(_ context.Context, _ string, caps Captures) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	name := caps.Get("app_name")
	if name == "" {
		p.say("Sorry, I didn't catch which application to open.")
		return
	}
	p.launchApplication(name, strings.Fields(caps.Get("args")))
}

func (p *Processor) launchApplication(name string, args []string) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	p.say("Opening " + name + ".")
	if err := p.system.OpenApplication(name, args...); err != nil {
		log.Error("application launch failed", "app", name, "error", err)
		p.say("I couldn't find or open " + name + ". Please check if it's installed correctly.")
	}
}

func (p *Processor) createDirectory(_ context.Context, _ string, caps Captures) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	dir := caps.Get("dir_path")
	if dir == "" {
		p.say("Sorry, I didn't catch where to create the directory.")
		return
	}
	p.createDirectoryAt(dir)
}

func (p *Processor) createDirectoryAt(dir string) {
	if !p.allowPath(dir) {
		return
	}
	p.say("Creating directory " + dir + ".")
	if err := p.system.CreateDirectory(dir); err != nil {
		log.Error("create directory failed", "dir", dir, "error", err)
		p.say("I couldn't create the directory " + dir + ". Please check the path and try again.")
		return
	}
	p.say("Directory " + dir + " has been created.")
}

func (p *Processor) createDirectoryPrompt(_ context.Context, _ string, _ Captures) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	dir, ok := p.ask("Where would you like to create the folder? Please specify a path.")
	if !ok || strings.TrimSpace(dir) == "" {
		p.say("No path given, so I won't create a folder.")
		return
	}
	p.createDirectoryAt(strings.TrimSpace(dir))
}

func (p *Processor) deleteDirectory(_ context.Context, _ string, caps Captures) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	dir := caps.Get("dir_path")
	if dir == "" {
		p.say("Sorry, I didn't catch which directory to delete.")
		return
	}
	if !p.allowPath(dir) {
		return
	}
	if !p.confirm("Are you sure you want to delete the directory " + dir + "? This cannot be undone. Please confirm yes or no.") {
		p.say("Directory deletion cancelled.")
		return
	}
	p.say("Deleting directory " + dir + ".")
	if err := p.system.DeleteItem(dir); err != nil {
		log.Error("delete directory failed", "dir", dir, "error", err)
		p.say("I couldn't delete the directory " + dir + ". Please check that it exists and try again.")
		return
	}
	p.say("Directory " + dir + " has been deleted.")
}

func (p *Processor) renameDirectory(_ context.Context, _ string, caps Captures) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	dir := caps.Get("dir_path")
	if dir == "" {
		p.say("Sorry, I didn't catch which directory to update.")
		return
	}
	if !p.system.DirExists(dir) {
		p.say("I couldn't find the directory " + dir + ". Please check the path and try again.")
		return
	}
	newName, ok := p.ask("What would you like to rename the directory " + dir + " to?")
	if !ok || strings.TrimSpace(newName) == "" {
		p.say("No new name given, so the directory stays as it is.")
		return
	}
	newName = strings.TrimSpace(newName)
	if !p.allowPath(dir) {
		return
	}
	renamed, err := p.system.RenameItem(dir, newName)
	if err != nil {
		log.Error("rename failed", "dir", dir, "error", err)
		p.say("I couldn't rename the directory. " + err.Error())
		return
	}
	p.say("Directory " + dir + " has been renamed to " + renamed + ".")
}

func (p *Processor) insertIntoDirectory(_ context.Context, _ string, caps Captures) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	dir := caps.Get("dir_path")
	if dir == "" {
		p.say("Sorry, I didn't catch which directory to insert into.")
		return
	}
	if !p.system.DirExists(dir) {
		p.say("I couldn't find the directory " + dir + ". Please check the path and try again.")
		return
	}
	name, ok := p.ask("What file would you like to create in " + dir + "?")
	if !ok || strings.TrimSpace(name) == "" {
		p.say("No file name given, so nothing was created.")
		return
	}
	name = strings.TrimSpace(name)
	target := dir + "/" + name
	if !p.allowPath(target) {
		return
	}
	if err := p.system.CreateFile(target, "This file was created by Jarvis.\n"); err != nil {
		log.Error("insert file failed", "path", target, "error", err)
		p.say("I couldn't create the file in " + dir + ". Please check permissions and try again.")
		return
	}
	p.say("File " + name + " has been created in " + dir + ".")
}

func (p *Processor) createFile(_ context.Context, _ string, caps Captures) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	file := caps.Get("file_path")
	if file == "" {
		p.say("Sorry, I didn't catch where to create the file.")
		return
	}
	if !p.allowPath(file) {
		return
	}
	p.say("Creating file " + file + ".")
	if err := p.system.CreateFile(file, ""); err != nil {
		log.Error("create file failed", "file", file, "error", err)
		p.say("I couldn't create the file " + file + ". Please check the path and try again.")
		return
	}
	p.say("File " + file + " has been created.")
}

func (p *Processor) deleteItem(_ context.Context, _ string, caps Captures) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	path := caps.Get("path")
	if path == "" {
		p.say("Sorry, I didn't catch what to delete.")
		return
	}
	if !p.allowPath(path) {
		return
	}
	if !p.confirm("Are you sure you want to delete " + path + "? Please confirm by saying yes or no.") {
		p.say("Delete operation cancelled.")
		return
	}
	p.say("Deleting " + path + ".")
	if err := p.system.DeleteItem(path); err != nil {
		log.Error("delete failed", "path", path, "error", err)
		p.say("I couldn't delete " + path + ". Please check that the path exists and try again.")
		return
	}
	p.say(path + " has been deleted.")
}

func (p *Processor) executeCommand(ctx context.Context, _ string, caps Captures) {
	if p.system == nil {
		p.say(systemOpsUnavailable)
		return
	}
	line := caps.Get("command")
	if line == "" {
		p.say("Sorry, I didn't catch which command to execute.")
		return
	}

	lower := strings.ToLower(line)
	for _, dc := range dangerousCommands {
		if strings.Contains(lower, dc) {
			log.Warn("refused dangerous command", "command", line)
			p.say("I'm sorry, that command appears to be potentially harmful. For safety reasons, I cannot execute it.")
			return
		}
	}

	p.say("Executing command: " + line)
	output, err := p.system.ExecuteCommand(ctx, line)
	if err != nil {
		log.Error("command execution failed", "command", line, "error", err)
		p.say("Command execution failed. Error: " + err.Error())
		return
	}
	if len(output) > 500 {
		output = output[:500] + "... (output truncated)"
	}
	p.say("Command executed successfully.")
	if strings.TrimSpace(output) != "" {
		p.say("Command output: " + output)
	}
}
