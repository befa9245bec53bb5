package sqlinline

// projectColumns is shared by every project select; members come back as text[].
const projectColumns = `p.id::text, p.name, p.description, p.deadline, p.owner_id::text, p.created_at, p.updated_at,
    coalesce((
        select array_agg(pm.user_id::text order by pm.joined_at, pm.user_id)
        from project_members pm
        where pm.project_id = p.id
    ), '{}'::text[]) as member_ids`

const QInsertProject = `--sql 202ecd69-50fb-4310-8a10-98e5462d5ef9
insert into projects (id, name, description, deadline, owner_id, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::timestamptz, $5::uuid, now(), now())
returning created_at, updated_at;
`

const QInsertProjectMember = `--sql f9e7c4da-5e9e-48d6-9350-cbf703be4c4b
insert into project_members (project_id, user_id, joined_at)
values ($1::uuid, $2::uuid, now())
on conflict (project_id, user_id) do nothing;
`

const QDeleteProjectMember = `--sql c61615e5-913d-4335-9272-29377267d1ab
delete from project_members
where project_id = $1::uuid
  and user_id = $2::uuid;
`

const QSelectProjectByID = `--sql 314067e7-95b2-414a-aa23-c4dd516d3ee3
select ` + projectColumns + `
from projects p
where p.id = $1::uuid
limit 1;
`

const QLockProject = `--sql c165d0fd-4c8e-4c05-bb9d-048c45cd08b1
select id::text
from projects
where id = $1::uuid
for update;
`

const QUpdateProject = `--sql f62666a3-db5e-4939-a9ed-8d2833c033b3
update projects
set name = $2::text,
    description = $3::text,
    deadline = $4::timestamptz,
    updated_at = now()
where id = $1::uuid
returning updated_at;
`

const QDeleteProject = `--sql 7d67294d-352d-4a08-b72e-9c3543601780
delete from projects
where id = $1::uuid;
`

const QListProjectsForUser = `--sql a80e85ea-d614-4584-b404-cff6c9fa53a7
select ` + projectColumns + `
from projects p
where p.owner_id = $1::uuid
   or exists (
        select 1 from project_members pm
        where pm.project_id = p.id and pm.user_id = $1::uuid
   )
order by p.created_at desc;
`

const QListProjectsDueBetween = `--sql 1685831f-650b-44e2-af69-ba9e4ac122fd
select ` + projectColumns + `
from projects p
where p.deadline >= $1::timestamptz
  and p.deadline < $2::timestamptz
  and exists (
        select 1 from tasks t
        where t.project_id = p.id and t.status <> 'completed'
  )
order by p.deadline asc;
`

const QListProjectsWithTaskActivitySince = `--sql c83f3626-5f90-447a-b49e-821609891971
select ` + projectColumns + `
from projects p
where exists (
        select 1 from tasks t
        where t.project_id = p.id and t.updated_at >= $1::timestamptz
  )
order by p.created_at asc;
`

const QCountOwnedProjects = `--sql ec280f8e-735a-429d-a690-d8b9cf52bdb9
select count(*)
from projects
where owner_id = $1::uuid;
`

const QCountMembersOfOwnedProjects = `--sql b2227bcf-357a-4b9c-8e83-3679890bdf62
select count(*)
from project_members pm
join projects p on p.id = pm.project_id
where p.owner_id = $1::uuid;
`
